package pipeline

import "context"

// Resolver uncovers the destination of a candidate URL. It never fails:
// when nothing can be resolved the candidate is returned unchanged.
//
//go:generate mockgen -package mockpipeline -source=interface.go -destination=mock/mockpipeline.go *
type Resolver interface {
	Resolve(ctx context.Context, candidate string) string
}

// Classifier decides whether a resolved URL is a scam link.
type Classifier interface {
	Classify(ctx context.Context, resolved string) (bool, error)
}
