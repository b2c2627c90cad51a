package discord

import (
	"context"
	"fmt"
	"fraudwatch/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// BridgeLogger routes discordgo's package logger into the context logger.
func BridgeLogger(ctx context.Context) {
	l := logger.Get(ctx).Named("discordgo").WithOptions(zap.AddCallerSkip(1))

	discordgo.Logger = func(msgL, _ int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			l.Error(msg)
		case discordgo.LogWarning:
			l.Warn(msg)
		case discordgo.LogInformational:
			l.Info(msg)
		default:
			l.Debug(msg)
		}
	}
}
