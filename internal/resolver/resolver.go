// Package resolver uncovers the destination of links hidden behind HTTP
// redirects (URL shorteners, tracking hops) without following them.
//
// Resolution is best-effort and bounded: the candidate host must answer a
// DNS lookup within a short deadline, then a single HEAD request is sent and
// a redirect Location, if any, is returned. Every failure (DNS miss, timeout,
// TLS error, throttling) degrades to returning the candidate unchanged.
package resolver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/pkg/logger"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const instrumentationName = "fraudwatch/internal/resolver"

// Probe outcomes recorded on the duration histogram.
const (
	OutcomeDisabled  = "disabled"
	OutcomeNoHost    = "no_host"
	OutcomeDNSMiss   = "dns_miss"
	OutcomeThrottled = "throttled"
	OutcomeFailed    = "failed"
	OutcomeLiteral   = "literal"
	OutcomeRedirect  = "redirect"
)

// Options configure the resolver. Zero durations fall back to the defaults.
type Options struct {
	// Enabled turns the stage on; when false Resolve is the identity.
	Enabled bool
	// DNSTimeout bounds a single DNS exchange.
	DNSTimeout time.Duration
	// DNSLifetime bounds the whole lookup including retries across servers.
	DNSLifetime time.Duration
	// HeadTimeout bounds the HEAD probe, including connection and TLS setup.
	HeadTimeout time.Duration
	// ProbesPerSecond limits outbound HEAD probes. <= 0 disables limiting.
	ProbesPerSecond float64
	// ProbeBurst is the limiter bucket size.
	ProbeBurst int
	// UserAgent is sent with every probe.
	UserAgent string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Enabled:         !cfg.Resolver.Disabled,
		DNSTimeout:      cfg.Resolver.DNSTimeout,
		DNSLifetime:     cfg.Resolver.DNSLifetime,
		HeadTimeout:     cfg.Resolver.HeadTimeout,
		ProbesPerSecond: cfg.Resolver.ProbesPerSecond,
		ProbeBurst:      cfg.Resolver.ProbeBurst,
		UserAgent:       cfg.Resolver.UserAgent,
	}
}

const (
	DefaultDNSTimeout  = 200 * time.Millisecond
	DefaultDNSLifetime = 200 * time.Millisecond
	DefaultHeadTimeout = 3 * time.Second
	DefaultUserAgent   = "fraudwatch-link-resolver/1.0"
)

func (o Options) withDefaults() Options {
	if o.DNSTimeout <= 0 {
		o.DNSTimeout = DefaultDNSTimeout
	}
	if o.DNSLifetime <= 0 {
		o.DNSLifetime = DefaultDNSLifetime
	}
	if o.HeadTimeout <= 0 {
		o.HeadTimeout = DefaultHeadTimeout
	}
	if o.ProbeBurst <= 0 {
		o.ProbeBurst = 1
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return o
}

// HostLookup checks that a host name has DNS records. *net.Resolver implements it.
type HostLookup interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Resolver follows at most one redirect hop per candidate. It is safe for concurrent use.
type Resolver struct {
	opts          Options
	lookup        HostLookup
	httpClient    *http.Client
	limiter       *rate.Limiter
	probeDuration metric.Float64Histogram
}

// New constructs a Resolver from explicit collaborators. httpClient is copied
// and its redirect policy replaced so that redirects are reported, not followed.
func New(opts Options, lookup HostLookup, httpClient *http.Client) (*Resolver, error) {
	opts = opts.withDefaults()

	client := *httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	client.Timeout = opts.HeadTimeout

	var limiter *rate.Limiter
	if opts.ProbesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ProbesPerSecond), opts.ProbeBurst)
	}

	hist, err := otel.Meter(instrumentationName).Float64Histogram("resolver.probe.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of link resolution attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create probe histogram: %w", err)
	}

	return &Resolver{
		opts:          opts,
		lookup:        lookup,
		httpClient:    &client,
		limiter:       limiter,
		probeDuration: hist,
	}, nil
}

// NewDefault constructs a Resolver using the pure-Go DNS resolver and a
// dedicated HTTP transport without connection reuse.
func NewDefault(opts Options) (*Resolver, error) {
	opts = opts.withDefaults()

	dnsResolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: opts.DNSTimeout}

			return d.DialContext(ctx, network, address)
		},
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.HeadTimeout}).DialContext,
		TLSHandshakeTimeout:   opts.HeadTimeout,
		ResponseHeaderTimeout: opts.HeadTimeout,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		// probes target untrusted hosts; never keep their connections around
		DisableKeepAlives: true,
	}

	return New(opts, dnsResolver, &http.Client{Transport: transport})
}

// Resolve returns the redirect target of candidate, or candidate unchanged
// when there is nothing to resolve or the probe fails.
func (r *Resolver) Resolve(ctx context.Context, candidate string) string {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "resolver.Resolve",
		trace.WithAttributes(attribute.String("candidate", candidate)))
	defer span.End()

	start := time.Now()
	resolved, outcome := r.resolve(ctx, candidate)

	span.SetAttributes(attribute.String("outcome", outcome))
	r.probeDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)))

	return resolved
}

func (r *Resolver) resolve(ctx context.Context, candidate string) (string, string) {
	if !r.opts.Enabled {
		return candidate, OutcomeDisabled
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return candidate, OutcomeNoHost
	}

	if !r.hostExists(ctx, u.Hostname()) {
		logger.Debug(ctx, "host does not resolve, treating URL literally", zap.String("host", u.Hostname()))

		return candidate, OutcomeDNSMiss
	}

	if r.limiter != nil && !r.limiter.Allow() {
		logger.Warn(ctx, "probe budget exhausted, treating URL literally")

		return candidate, OutcomeThrottled
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.opts.HeadTimeout)
	defer cancel()

	logger.Info(ctx, "resolving redirect URL")

	location, err := r.head(probeCtx, u)
	if err != nil {
		logger.Info(ctx, "redirect check failed", zap.Error(err))

		return candidate, OutcomeFailed
	}
	if location == "" {
		return candidate, OutcomeLiteral
	}

	return location, OutcomeRedirect
}

// hostExists reports whether host has at least one address within DNSLifetime.
func (r *Resolver) hostExists(ctx context.Context, host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.DNSLifetime)
	defer cancel()

	addrs, err := r.lookup.LookupHost(ctx, host)

	return err == nil && len(addrs) > 0
}

// head sends a single HEAD request and returns the redirect location, or ""
// when the response is not a redirect.
func (r *Resolver) head(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("probe timed out: %w", err)
		}

		return "", fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	location := resp.Header.Get("Location")
	if !isRedirect(resp.StatusCode) || location == "" {
		return "", nil
	}

	// relative targets are made absolute against the probed URL; absolute
	// ones are returned verbatim
	target, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	if !target.IsAbs() {
		target = u.ResolveReference(target)
		location = target.String()
	}
	if !isWeb(target) {
		return "", fmt.Errorf("redirect location %q is not a web URL", location)
	}

	return location, nil
}

func isWeb(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
