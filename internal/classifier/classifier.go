// Package classifier adapts the scam oracle to the message pipeline: it parses
// resolved URLs, consults the oracle and memoizes recent verdicts.
package classifier

import (
	"context"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/serrors"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Options configure verdict memoization.
type Options struct {
	// VerdictCacheSize is the number of verdicts kept. Zero disables memoization.
	VerdictCacheSize int
	// VerdictCacheTTL bounds how long a verdict is reused.
	VerdictCacheTTL time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		VerdictCacheSize: cfg.Classifier.VerdictCacheSize,
		VerdictCacheTTL:  cfg.Classifier.VerdictCacheTTL,
	}
}

// Classifier is safe for concurrent use.
type Classifier struct {
	oracle   Oracle
	verdicts *expirable.LRU[string, bool]
}

// New constructs a Classifier around oracle. The oracle's rules must already
// have been validated.
func New(oracle Oracle, opts Options) *Classifier {
	c := &Classifier{oracle: oracle}
	if opts.VerdictCacheSize > 0 {
		c.verdicts = expirable.NewLRU[string, bool](opts.VerdictCacheSize, nil, opts.VerdictCacheTTL)
	}

	return c
}

// Classify reports whether resolved is a scam link. A URL that cannot be parsed
// yields an ErrBadRequest kinded error. Oracle errors are returned as is.
func (c *Classifier) Classify(ctx context.Context, resolved string) (bool, error) {
	u, err := url.Parse(resolved)
	if err != nil {
		return false, serrors.Wrap(serrors.ErrBadRequest, err, "could not parse URL")
	}

	key := NormalizeURL(u)
	if c.verdicts != nil {
		if scam, ok := c.verdicts.Get(key); ok {
			logger.Debug(ctx, "reusing verdict", zap.String("key", key), zap.Bool("scam", scam))

			return scam, nil
		}
	}

	scam, err := c.oracle.IsScam(u, false)
	if err != nil {
		return false, fmt.Errorf("oracle rejected %q: %w", resolved, err)
	}

	if c.verdicts != nil {
		c.verdicts.Add(key, scam)
	}

	return scam, nil
}
