package logger_test

import (
	"context"
	"fraudwatch/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantErr     bool
		wantDebug   bool
	}{
		{name: "development defaults to debug", environment: logger.DevelopmentEnvironment, wantDebug: true},
		{name: "production defaults to info", environment: logger.ProductionEnvironment, wantDebug: false},
		{name: "level override", environment: logger.DevelopmentEnvironment, level: "warn", wantDebug: false},
		{name: "invalid level", environment: logger.ProductionEnvironment, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Setup(tt.environment, tt.level)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)

			ctx := context.Background()
			require.NotNil(t, logger.Get(ctx))
			require.Equal(t, tt.wantDebug, logger.IsDebug(ctx))
		})
	}
}

func TestGetAndWithLogger(t *testing.T) {
	require.NoError(t, logger.Setup(logger.DevelopmentEnvironment, ""))

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx), "should return default logger when context has no logger")

	custom := zap.NewNop()
	require.Equal(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("authorID", "42"))
	logger.Info(ctx, "checking URL", zap.String("URL", "http://a.example"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "checking URL", entries[0].Message)
	fields := entries[0].ContextMap()
	require.Equal(t, "42", fields["authorID"])
	require.Equal(t, "http://a.example", fields["URL"])
}

func TestLoggingFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Equal(t, 4, logs.Len())
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
