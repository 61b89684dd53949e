package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents an audit event on the referral pipeline.
// Type examples: "referral.created", "notify.delivered", "notify.failed".
// Meta may contain partner, outcome, reason, etc.
type Event struct {
	Type       string
	ReferralID uuid.UUID
	Meta       map[string]string
	Time       time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
