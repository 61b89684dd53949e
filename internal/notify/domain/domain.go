package domain

import (
	"context"

	"github.com/google/uuid"
)

// Status is the terminal state of one dispatch. Every dispatch ends in
// exactly one of these.
type Status string

const (
	// StatusSkipped: no partner was selected, nothing to send. A success.
	StatusSkipped Status = "skipped"
	// StatusDelivered: the transport accepted the message.
	StatusDelivered Status = "delivered"
	// StatusFailedUnknownPartner: the referred partner is not in the
	// directory. An operator fixes the directory, not the network.
	StatusFailedUnknownPartner Status = "failed_unknown_partner"
	// StatusFailedRejected: the transport refused the message outright;
	// never retried.
	StatusFailedRejected Status = "failed_rejected"
	// StatusFailedExhausted: transient failures used up the retry budget.
	StatusFailedExhausted Status = "failed_exhausted"
)

// Outcome is the classified result of dispatching one notification.
type Outcome struct {
	Status        Status    `json:"status"`
	Partner       string    `json:"partner,omitempty"`
	ProviderRef   string    `json:"provider_ref,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Attempts      int       `json:"attempts"`
	CorrelationID uuid.UUID `json:"correlation_id"`
}

// Failed reports whether the dispatch ended in a failure state.
func (o Outcome) Failed() bool {
	switch o.Status {
	case StatusFailedUnknownPartner, StatusFailedRejected, StatusFailedExhausted:
		return true
	}
	return false
}

// OutcomeLog is an optional audit sink for terminal outcomes. Appends are
// best-effort; a log failure never changes the outcome.
type OutcomeLog interface {
	Append(ctx context.Context, o Outcome) error
}
