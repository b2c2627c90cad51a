// Package pipeline scans inbound chat messages for scam links and hands
// confirmed ones to the officer.
//
// Per message: exempt authors are ignored; otherwise URL candidates are
// extracted in textual order, each is resolved past redirects and classified,
// and the first positive verdict stops the search. A positive verdict
// activates the officer under a process-wide lock, and a successful sanction
// schedules the author's cooldown release.
package pipeline

import (
	"context"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/internal/extractor"
	"fraudwatch/internal/sanction"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/metrics"
	"iter"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "fraudwatch/internal/pipeline"

// Options configure message exemptions.
type Options struct {
	// SafeRoles are role IDs whose holders are never scanned.
	SafeRoles []string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{SafeRoles: cfg.Discord.SafeRoles}
}

// Deps are the pipeline collaborators.
type Deps struct {
	Resolver   Resolver
	Classifier Classifier
	Officer    *sanction.Officer
	Releaser   *sanction.Releaser
}

// Result describes how a message was handled.
type Result struct {
	// Exempt is true when the author is not subject to scanning.
	Exempt bool
	// Verdict is the first positive verdict, or a zero Verdict when the
	// message carried no scam link.
	Verdict domain.Verdict
	// Report is set when the officer was activated.
	Report *sanction.Report
}

// Pipeline is safe for concurrent use; messages may be handled in parallel.
type Pipeline struct {
	deps      Deps
	safeRoles map[string]struct{}

	// officerMu serializes every officer activation so that the cooldown
	// check, the platform actions and the cache update happen atomically.
	officerMu sync.Mutex
}

func New(deps Deps, opts Options) *Pipeline {
	safeRoles := make(map[string]struct{}, len(opts.SafeRoles))
	for _, r := range opts.SafeRoles {
		safeRoles[r] = struct{}{}
	}

	return &Pipeline{deps: deps, safeRoles: safeRoles}
}

// Handle scans msg and sanctions its author when a scam link is found. An
// error means classification failed; no officer action was taken.
func (p *Pipeline) Handle(ctx context.Context, msg domain.Message) (Result, error) {
	start := time.Now()

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "pipeline.Handle", trace.WithAttributes(
		attribute.String("messageID", msg.ID),
		attribute.String("authorID", string(msg.Author.ID)),
	))
	defer span.End()

	fields := []zap.Field{
		zap.String("messageID", msg.ID),
		zap.String("authorID", string(msg.Author.ID)),
		zap.String("guildID", msg.GuildID),
	}
	if sc := span.SpanContext(); sc.IsValid() {
		fields = append(fields, zap.String("traceID", sc.TraceID().String()))
	}
	ctx = logger.WithFields(ctx, fields...)

	res, err := p.handle(ctx, msg)

	metrics.MessageDuration.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.MessagesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
	case res.Exempt:
		metrics.MessagesTotal.WithLabelValues("exempt").Inc()
	case res.Verdict.Scam:
		metrics.MessagesTotal.WithLabelValues("scam").Inc()
		span.SetAttributes(attribute.String("instance", res.Verdict.Instance))
	default:
		metrics.MessagesTotal.WithLabelValues("clean").Inc()
	}

	return res, err
}

func (p *Pipeline) handle(ctx context.Context, msg domain.Message) (Result, error) {
	if reason, ok := p.exempt(msg.Author); ok {
		logger.Debug(ctx, "author exempt from scanning", zap.String("reason", reason))

		return Result{Exempt: true}, nil
	}

	verdict, err := p.firstScam(ctx, extractor.Extract(msg.Content))
	if err != nil {
		return Result{}, err
	}
	if !verdict.Scam {
		return Result{}, nil
	}

	logger.Info(ctx, "detected scam",
		zap.String("candidate", verdict.Candidate), zap.String("instance", verdict.Instance))

	report := p.sanction(ctx, msg, verdict.Instance)

	return Result{Verdict: verdict, Report: &report}, nil
}

func (p *Pipeline) exempt(author domain.Author) (string, bool) {
	switch {
	case author.Self:
		return "self", true
	case !author.Member:
		return "not a member", true
	case author.HasAnyRole(p.safeRoles):
		return "safe role", true
	default:
		return "", false
	}
}

// firstScam resolves and classifies candidates in order and returns the first
// positive verdict. Candidates after it are never evaluated.
func (p *Pipeline) firstScam(ctx context.Context, candidates iter.Seq[string]) (domain.Verdict, error) {
	for candidate := range candidates {
		if !Scannable(candidate) {
			metrics.CandidatesTotal.WithLabelValues("skipped").Inc()

			continue
		}

		ctx := logger.WithFields(ctx, zap.String("URL", candidate))
		logger.Info(ctx, "checking URL")

		resolved := p.deps.Resolver.Resolve(ctx, candidate)
		scam, err := p.deps.Classifier.Classify(ctx, resolved)
		if err != nil {
			metrics.CandidatesTotal.WithLabelValues("error").Inc()

			return domain.Verdict{}, fmt.Errorf("could not classify %q: %w", resolved, err)
		}
		if scam {
			metrics.CandidatesTotal.WithLabelValues("scam").Inc()

			return domain.Verdict{Scam: true, Candidate: candidate, Instance: resolved}, nil
		}
		metrics.CandidatesTotal.WithLabelValues("clean").Inc()
	}

	return domain.Verdict{}, nil
}

// Scannable rejects empty candidates and candidates without an http marker;
// bare domains and www. forms are not classified.
func Scannable(candidate string) bool {
	return candidate != "" && strings.Contains(candidate, "http")
}

func (p *Pipeline) sanction(ctx context.Context, msg domain.Message, instance string) sanction.Report {
	p.officerMu.Lock()
	report := p.deps.Officer.Activate(ctx, msg, instance)
	p.officerMu.Unlock()

	metrics.SanctionsTotal.WithLabelValues(report.Outcome.String()).Inc()
	for _, s := range report.Failed() {
		metrics.ActionFailuresTotal.WithLabelValues(string(s.Step)).Inc()
	}

	if report.Outcome == domain.OutcomeNotifiedAndSanctioned {
		p.deps.Releaser.Schedule(ctx, msg.Author.ID)
	}

	return report
}
