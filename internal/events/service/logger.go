package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/domain"
)

// Logger is a simple Publisher that writes events to the injected service
// logger, so audit output survives request contexts without a logger
// attached. In production, replace with a queue or external sink.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(log zerolog.Logger) *Logger { return &Logger{log: log} }

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	l.log.Info().
		Str("type", e.Type).
		Str("correlation_id", e.ReferralID.String()).
		Fields(map[string]any{"meta": e.Meta}).
		Time("ts", e.Time).
		Msg("event")
	return nil
}
