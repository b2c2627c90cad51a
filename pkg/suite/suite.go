// Package suite is a configurable scam-link oracle. Given a parsed URL it
// decides whether the link is a known or look-alike fraud domain.
//
// Rules are evaluated on the registrable domain (eTLD+1) of the URL host:
//   - allowed domains never match
//   - blocked domains (and their subdomains) always match
//   - domains within MaxDistance edits of a protected domain match
//   - foreign domains embedding a protected brand label match when the link
//     also carries a suspicious keyword or a suspicious TLD
package suite

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Config holds the oracle rules.
type Config struct {
	// AllowedDomains are trusted registrable domains, e.g. "discord.com".
	AllowedDomains []string `yaml:"allowedDomains" env:"SUITE_ALLOWED_DOMAINS" env-separator:","`
	// BlockedDomains are known fraud domains.
	BlockedDomains []string `yaml:"blockedDomains" env:"SUITE_BLOCKED_DOMAINS" env-separator:","`
	// ProtectedDomains are impersonation targets, e.g. "steamcommunity.com".
	ProtectedDomains []string `yaml:"protectedDomains" env:"SUITE_PROTECTED_DOMAINS" env-separator:","`
	// MaxDistance is the edit distance under which a domain counts as a look-alike.
	MaxDistance int `yaml:"maxDistance" env:"SUITE_MAX_DISTANCE" env-default:"2"`
	// SuspiciousKeywords raise brand-embedding hosts to a match, e.g. "nitro", "gift".
	SuspiciousKeywords []string `yaml:"suspiciousKeywords" env:"SUITE_SUSPICIOUS_KEYWORDS" env-separator:","`
	// SuspiciousTLDs raise brand-embedding hosts to a match, e.g. "ru", "xyz".
	SuspiciousTLDs []string `yaml:"suspiciousTLDs" env:"SUITE_SUSPICIOUS_TLDS" env-separator:","`
}

// maxAllowedDistance caps MaxDistance; larger values flag unrelated domains.
const maxAllowedDistance = 3

// ErrInvalidConfig is returned by ValidConfig.
var ErrInvalidConfig = errors.New("invalid suite config")

// ValidConfig checks cfg once at startup.
func ValidConfig(cfg Config) error {
	if cfg.MaxDistance < 0 || cfg.MaxDistance > maxAllowedDistance {
		return fmt.Errorf("%w: maxDistance must be within [0, %d], got %d",
			ErrInvalidConfig, maxAllowedDistance, cfg.MaxDistance)
	}

	for _, d := range cfg.ProtectedDomains {
		reg, err := registrable(d)
		if err != nil {
			return fmt.Errorf("%w: protected domain %q: %w", ErrInvalidConfig, d, err)
		}
		if reg != normalizeHost(d) {
			return fmt.Errorf("%w: protected domain %q is not a registrable domain (want %q)", ErrInvalidConfig, d, reg)
		}
	}

	allowed := toSet(cfg.AllowedDomains)
	for _, d := range cfg.BlockedDomains {
		if normalizeHost(d) == "" {
			return fmt.Errorf("%w: empty blocked domain", ErrInvalidConfig)
		}
		if _, ok := allowed[normalizeHost(d)]; ok {
			return fmt.Errorf("%w: %q is both allowed and blocked", ErrInvalidConfig, d)
		}
	}

	return nil
}

// IsScam reports whether u is a scam link under cfg. It returns an error for
// malformed input (nil URL or missing host) and, when validateConfig is set,
// for an invalid cfg.
func IsScam(cfg Config, u *url.URL, validateConfig bool) (bool, error) {
	if validateConfig {
		if err := ValidConfig(cfg); err != nil {
			return false, err
		}
	}
	if u == nil {
		return false, errors.New("nil URL")
	}

	// a URL without a host names no site that could be blocked
	host := normalizeHost(u.Hostname())
	if host == "" {
		return false, nil
	}

	if net.ParseIP(host) != nil {
		return matchesDomain(host, cfg.BlockedDomains), nil
	}

	reg, err := registrable(host)
	if err != nil {
		// bare public suffixes and single-label hosts have no registrable
		// domain; only the explicit block list applies to them.
		return matchesDomain(host, cfg.BlockedDomains), nil //nolint: nilerr
	}

	if _, ok := toSet(cfg.AllowedDomains)[reg]; ok {
		return false, nil
	}
	if matchesDomain(host, cfg.BlockedDomains) {
		return true, nil
	}

	protected := toSet(cfg.ProtectedDomains)
	if _, ok := protected[reg]; ok {
		return false, nil
	}
	for p := range protected {
		if levenshtein(reg, p) <= cfg.MaxDistance {
			return true, nil
		}
	}

	return embedsBrand(cfg, host, reg, u), nil
}

// embedsBrand flags hosts such as "steamcommunity.gift-nitro.ru" that carry a
// protected brand label on a foreign domain together with a lure.
func embedsBrand(cfg Config, host, reg string, u *url.URL) bool {
	brandFound := false
	for _, protected := range cfg.ProtectedDomains {
		brand := brandLabel(normalizeHost(protected))
		if brand != "" && strings.Contains(host, brand) {
			brandFound = true

			break
		}
	}
	if !brandFound {
		return false
	}

	tld := reg[strings.LastIndexByte(reg, '.')+1:]
	if _, ok := toSet(cfg.SuspiciousTLDs)[tld]; ok {
		return true
	}

	haystack := strings.ToLower(host + u.EscapedPath() + "?" + u.RawQuery)
	for _, kw := range cfg.SuspiciousKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}

	return false
}

// Detector binds a validated Config to the IsScam function.
type Detector struct {
	cfg Config
}

// NewDetector validates cfg and returns a Detector for it.
func NewDetector(cfg Config) (*Detector, error) {
	if err := ValidConfig(cfg); err != nil {
		return nil, err
	}

	return &Detector{cfg: cfg}, nil
}

// IsScam evaluates u against the detector's config.
func (d *Detector) IsScam(u *url.URL, validateConfig bool) (bool, error) {
	return IsScam(d.cfg, u, validateConfig)
}
