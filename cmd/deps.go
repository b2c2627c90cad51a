package main

import (
	"context"
	"fraudwatch/internal/classifier"
	"fraudwatch/internal/config"
	"fraudwatch/internal/resolver"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/suite"

	"go.uber.org/zap"
)

// getResolver creates the redirect resolver from configuration values.
func getResolver(ctx context.Context, cfg *config.Config) *resolver.Resolver {
	res, err := resolver.NewDefault(resolver.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create resolver", zap.Error(err))
	}
	if cfg.Resolver.Disabled {
		logger.Info(ctx, "redirect resolution disabled, URLs are classified as written")
	}

	return res
}

// getClassifier validates the oracle rules once and creates the classifier.
// An invalid configuration is fatal.
func getClassifier(ctx context.Context, cfg *config.Config) *classifier.Classifier {
	detector, err := suite.NewDetector(cfg.Suite)
	if err != nil {
		logger.Fatal(ctx, "invalid suite configuration", zap.Error(err))
	}

	return classifier.New(detector, classifier.NewOptions(cfg))
}
