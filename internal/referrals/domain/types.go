package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
)

// Stage is the business lifecycle enumeration. The four-value set is
// canonical; the legacy three-value set (Ideation/Startup/Established) is
// accepted on input only and mapped by ParseStage.
type Stage string

const (
	StageIdeation Stage = "Ideation"
	StagePlanning Stage = "Planning"
	StageLaunch   Stage = "Launch"
	StageFunding  Stage = "Funding"
)

// Stages lists the canonical values in display order.
var Stages = []Stage{StageIdeation, StagePlanning, StageLaunch, StageFunding}

// ParseStage canonicalizes a stage value. Legacy deployment values map onto
// the canonical set and never round-trip back out.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ideation":
		return StageIdeation, nil
	case "planning":
		return StagePlanning, nil
	case "launch", "startup":
		return StageLaunch, nil
	case "funding", "established":
		return StageFunding, nil
	case "":
		return "", fmt.Errorf("%w: stage is required", ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, s)
	}
}

// Referral is one entrepreneur-to-partner referral event. ID and CreatedAt
// are store-assigned and immutable; PartnerConfirmed changes only through an
// explicit update, never from a notification outcome.
type Referral struct {
	ID               uuid.UUID  `json:"id"`
	EntrepreneurName string     `json:"name"`
	BusinessName     string     `json:"business"`
	BusinessType     Stage      `json:"type"`
	ContactDate      *time.Time `json:"date,omitempty"`
	ReferredPartner  string     `json:"referred"`
	Initials         string     `json:"initials"`
	Notes            string     `json:"notes,omitempty"`
	PartnerConfirmed bool       `json:"confirmed"`
	Stage            Stage      `json:"stage"`
	CreatedAt        time.Time  `json:"created_at"`
	OwnerUserID      string     `json:"user_id"`
}

// CreateInput carries a referral-creation request past validation.
type CreateInput struct {
	Name        string
	Business    string
	Type        string
	Date        *time.Time
	Referred    string
	Initials    string
	Confirmed   bool
	Notes       string
	Stage       string
	OwnerUserID string
}

// UpdateInput covers the mutable fields of an existing referral.
type UpdateInput struct {
	Name      string
	Business  string
	Type      string
	Date      *time.Time
	Referred  string
	Initials  string
	Confirmed bool
	Notes     string
	Stage     string
}

// ErrNotFound is returned when a referral id does not exist.
var ErrNotFound = errors.New("referral not found")

// ErrInvalidInput marks a client-input error. Handlers map it to 400 with
// the wrapped message; any other error is a server failure and stays out of
// response bodies.
var ErrInvalidInput = errors.New("invalid input")

// Repository abstracts the external record store.
type Repository interface {
	Create(ctx context.Context, r Referral) (Referral, error)
	GetByID(ctx context.Context, id uuid.UUID) (Referral, error)
	List(ctx context.Context) ([]Referral, error)
	Update(ctx context.Context, r Referral) error
	SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier dispatches the partner notification for a stored referral.
type Notifier interface {
	Notify(ctx context.Context, rec Referral) ndomain.Outcome
}

// Service encapsulates the referral lifecycle. Create returns the persisted
// record together with its notification outcome; the two are independent
// facts, a failed notification never invalidates the record.
type Service interface {
	Create(ctx context.Context, in CreateInput) (Referral, ndomain.Outcome, error)
	GetByID(ctx context.Context, id uuid.UUID) (Referral, error)
	List(ctx context.Context) ([]Referral, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Referral, error)
	SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) (Referral, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
