package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

// Postgres persists referrals. The store assigns id and created_at; updates
// never touch either.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const referralColumns = `id, entrepreneur_name, business_name, business_type, contact_date,
	referred_partner, COALESCE(initials, ''), COALESCE(notes, ''), partner_confirmed, stage,
	created_at, COALESCE(owner_user_id, '')`

func scanReferral(row pgx.Row) (domain.Referral, error) {
	var r domain.Referral
	var businessType, stage string
	err := row.Scan(&r.ID, &r.EntrepreneurName, &r.BusinessName, &businessType, &r.ContactDate,
		&r.ReferredPartner, &r.Initials, &r.Notes, &r.PartnerConfirmed, &stage,
		&r.CreatedAt, &r.OwnerUserID)
	if err != nil {
		return domain.Referral{}, err
	}
	r.BusinessType = domain.Stage(businessType)
	r.Stage = domain.Stage(stage)
	return r, nil
}

func (p *Postgres) Create(ctx context.Context, r domain.Referral) (domain.Referral, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO referrals (entrepreneur_name, business_name, business_type, contact_date,
			referred_partner, initials, notes, partner_confirmed, stage, owner_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+referralColumns,
		r.EntrepreneurName, r.BusinessName, string(r.BusinessType), r.ContactDate,
		r.ReferredPartner, r.Initials, r.Notes, r.PartnerConfirmed, string(r.Stage), r.OwnerUserID)
	out, err := scanReferral(row)
	if err != nil {
		return domain.Referral{}, fmt.Errorf("referrals: create: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetByID(ctx context.Context, id uuid.UUID) (domain.Referral, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+referralColumns+` FROM referrals WHERE id = $1`, id)
	out, err := scanReferral(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Referral{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Referral{}, fmt.Errorf("referrals: get: %w", err)
	}
	return out, nil
}

func (p *Postgres) List(ctx context.Context) ([]domain.Referral, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+referralColumns+` FROM referrals ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("referrals: list: %w", err)
	}
	defer rows.Close()

	var out []domain.Referral
	for rows.Next() {
		r, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("referrals: list scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Update(ctx context.Context, r domain.Referral) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE referrals
		SET entrepreneur_name = $2, business_name = $3, business_type = $4, contact_date = $5,
			referred_partner = $6, initials = $7, notes = $8, partner_confirmed = $9, stage = $10
		WHERE id = $1`,
		r.ID, r.EntrepreneurName, r.BusinessName, string(r.BusinessType), r.ContactDate,
		r.ReferredPartner, r.Initials, r.Notes, r.PartnerConfirmed, string(r.Stage))
	if err != nil {
		return fmt.Errorf("referrals: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE referrals SET partner_confirmed = $2 WHERE id = $1`, id, confirmed)
	if err != nil {
		return fmt.Errorf("referrals: set confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM referrals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("referrals: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Append writes one terminal notification outcome to the audit table,
// satisfying the dispatcher's OutcomeLog.
func (p *Postgres) Append(ctx context.Context, o ndomain.Outcome) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO notification_log (referral_id, outcome, provider_ref, reason, attempts)
		VALUES ($1, $2, $3, $4, $5)`,
		o.CorrelationID, string(o.Status), o.ProviderRef, o.Reason, o.Attempts)
	if err != nil {
		return fmt.Errorf("referrals: outcome log: %w", err)
	}
	return nil
}

var _ domain.Repository = (*Postgres)(nil)
var _ ndomain.OutcomeLog = (*Postgres)(nil)
