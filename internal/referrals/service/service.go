package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	evdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/metrics"
	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

type service struct {
	repo     domain.Repository
	notifier domain.Notifier
	events   evdomain.Publisher
	log      zerolog.Logger
}

func New(repo domain.Repository, notifier domain.Notifier, events evdomain.Publisher, log zerolog.Logger) domain.Service {
	return &service{repo: repo, notifier: notifier, events: events, log: log}
}

// Create validates and persists a referral, then dispatches the partner
// notification. The dispatch runs only after the write has succeeded, and
// its failure is surfaced in the returned outcome without ever rolling the
// record back.
func (s *service) Create(ctx context.Context, in domain.CreateInput) (domain.Referral, ndomain.Outcome, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Referral{}, ndomain.Outcome{}, fmt.Errorf("%w: entrepreneur name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Business) == "" {
		return domain.Referral{}, ndomain.Outcome{}, fmt.Errorf("%w: business name is required", domain.ErrInvalidInput)
	}
	businessType, err := domain.ParseStage(in.Type)
	if err != nil {
		return domain.Referral{}, ndomain.Outcome{}, err
	}
	stage := businessType
	if strings.TrimSpace(in.Stage) != "" {
		stage, err = domain.ParseStage(in.Stage)
		if err != nil {
			return domain.Referral{}, ndomain.Outcome{}, err
		}
	}

	rec, err := s.repo.Create(ctx, domain.Referral{
		EntrepreneurName: strings.TrimSpace(in.Name),
		BusinessName:     strings.TrimSpace(in.Business),
		BusinessType:     businessType,
		ContactDate:      in.Date,
		ReferredPartner:  strings.TrimSpace(in.Referred),
		Initials:         strings.TrimSpace(in.Initials),
		Notes:            in.Notes,
		PartnerConfirmed: in.Confirmed,
		Stage:            stage,
		OwnerUserID:      in.OwnerUserID,
	})
	if err != nil {
		return domain.Referral{}, ndomain.Outcome{}, err
	}

	metrics.IncReferralCreated(string(rec.Stage))
	if s.events != nil {
		_ = s.events.Publish(ctx, evdomain.Event{
			Type:       "referral.created",
			ReferralID: rec.ID,
			Meta:       map[string]string{"partner": rec.ReferredPartner, "stage": string(rec.Stage)},
			Time:       time.Now().UTC(),
		})
	}

	outcome := s.notifier.Notify(ctx, rec)
	return rec, outcome, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (domain.Referral, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.Referral, error) {
	return s.repo.List(ctx)
}

// Update edits mutable fields in place. Edits never re-trigger the partner
// notification.
func (s *service) Update(ctx context.Context, id uuid.UUID, in domain.UpdateInput) (domain.Referral, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Referral{}, err
	}

	businessType, err := domain.ParseStage(in.Type)
	if err != nil {
		return domain.Referral{}, err
	}
	stage := rec.Stage
	if strings.TrimSpace(in.Stage) != "" {
		stage, err = domain.ParseStage(in.Stage)
		if err != nil {
			return domain.Referral{}, err
		}
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Business) == "" {
		return domain.Referral{}, fmt.Errorf("%w: name and business are required", domain.ErrInvalidInput)
	}

	rec.EntrepreneurName = strings.TrimSpace(in.Name)
	rec.BusinessName = strings.TrimSpace(in.Business)
	rec.BusinessType = businessType
	rec.ContactDate = in.Date
	rec.ReferredPartner = strings.TrimSpace(in.Referred)
	rec.Initials = strings.TrimSpace(in.Initials)
	rec.Notes = in.Notes
	rec.PartnerConfirmed = in.Confirmed
	rec.Stage = stage

	if err := s.repo.Update(ctx, rec); err != nil {
		return domain.Referral{}, err
	}
	return rec, nil
}

func (s *service) SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) (domain.Referral, error) {
	if err := s.repo.SetConfirmed(ctx, id, confirmed); err != nil {
		return domain.Referral{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		_ = s.events.Publish(ctx, evdomain.Event{
			Type:       "referral.deleted",
			ReferralID: id,
			Time:       time.Now().UTC(),
		})
	}
	return nil
}
