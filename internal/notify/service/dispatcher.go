package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/directory"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	evdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/metrics"
	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

// Dispatcher runs the notification state machine for stored referrals:
// resolve the partner, compose the message, send with bounded retries, and
// classify the terminal outcome. It holds no per-referral state; concurrent
// dispatches share only the read-only directory and the pooled transport.
type Dispatcher struct {
	dir    *directory.Directory
	sender edomain.Sender
	events evdomain.Publisher
	log    zerolog.Logger

	// outcomes is optional; nil disables audit logging.
	outcomes ndomain.OutcomeLog

	from        string
	maxAttempts int
	backoff     time.Duration
	sendTimeout time.Duration
}

func New(dir *directory.Directory, sender edomain.Sender, events evdomain.Publisher, cfg config.Config, log zerolog.Logger) *Dispatcher {
	maxAttempts := cfg.NotifyMaxAttempts
	if maxAttempts < 1 {
		// Zero means an unvalidated config; every dispatch gets at least
		// one attempt.
		maxAttempts = 1
	}
	return &Dispatcher{
		dir:         dir,
		sender:      sender,
		events:      events,
		log:         log,
		from:        cfg.FromEmail,
		maxAttempts: maxAttempts,
		backoff:     cfg.NotifyRetryBackoff,
		sendTimeout: cfg.NotifySendTimeout,
	}
}

// SetOutcomeLog attaches an audit sink for terminal outcomes.
func (d *Dispatcher) SetOutcomeLog(l ndomain.OutcomeLog) { d.outcomes = l }

// Notify resolves the referral's partner and delivers the notification.
// It always returns a terminal outcome and never returns before one is
// reached.
func (d *Dispatcher) Notify(ctx context.Context, rec rdomain.Referral) ndomain.Outcome {
	log := d.log.With().Str("correlation_id", rec.ID.String()).Logger()

	addr, err := d.dir.Resolve(rec.ReferredPartner)
	if err != nil {
		if errors.Is(err, directory.ErrNoPartner) {
			log.Info().Msg("no partner selected, notification skipped")
			return d.finish(ctx, log, ndomain.Outcome{
				Status:        ndomain.StatusSkipped,
				CorrelationID: rec.ID,
			})
		}
		var unknown *directory.UnknownPartnerError
		if errors.As(err, &unknown) {
			log.Warn().Str("partner", unknown.Name).Msg("referred partner not in directory")
			return d.finish(ctx, log, ndomain.Outcome{
				Status:        ndomain.StatusFailedUnknownPartner,
				Partner:       unknown.Name,
				Reason:        unknown.Error(),
				CorrelationID: rec.ID,
			})
		}
		// Resolve only yields the two errors above; treat anything else
		// as unknown partner rather than guessing an address.
		return d.finish(ctx, log, ndomain.Outcome{
			Status:        ndomain.StatusFailedUnknownPartner,
			Partner:       rec.ReferredPartner,
			Reason:        err.Error(),
			CorrelationID: rec.ID,
		})
	}

	out := d.deliver(ctx, rec, addr)
	out.Partner = rec.ReferredPartner
	return d.finish(ctx, log, out)
}

// Deliver composes and sends to a known address, applying the retry policy.
// Used by the standalone notification endpoint where the caller has already
// resolved (or overridden) the recipient.
func (d *Dispatcher) Deliver(ctx context.Context, rec rdomain.Referral, toAddress string) ndomain.Outcome {
	log := d.log.With().Str("correlation_id", rec.ID.String()).Logger()
	out := d.deliver(ctx, rec, toAddress)
	out.Partner = rec.ReferredPartner
	return d.finish(ctx, log, out)
}

// deliver runs the retry loop. The caller's cancellation is deliberately
// detached: once a send is in flight it completes or fails on its own
// timeout, because a partially-sent message cannot be recalled. Total
// attempts never exceed the configured cap.
func (d *Dispatcher) deliver(ctx context.Context, rec rdomain.Referral, toAddress string) ndomain.Outcome {
	log := d.log.With().Str("correlation_id", rec.ID.String()).Logger()
	msg := Compose(rec, toAddress, d.from)
	base := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		sctx, cancel := context.WithTimeout(base, d.sendTimeout)
		res, err := d.sender.Send(sctx, msg)
		cancel()

		if err == nil {
			metrics.IncEmailSendAttempt(d.sender.Name(), "accepted")
			return ndomain.Outcome{
				Status:        ndomain.StatusDelivered,
				ProviderRef:   res.ProviderRef,
				Attempts:      attempt,
				CorrelationID: rec.ID,
			}
		}
		if edomain.IsRejected(err) {
			metrics.IncEmailSendAttempt(d.sender.Name(), "rejected")
			log.Error().Err(err).Int("attempt", attempt).Msg("message rejected by transport")
			return ndomain.Outcome{
				Status:        ndomain.StatusFailedRejected,
				Reason:        err.Error(),
				Attempts:      attempt,
				CorrelationID: rec.ID,
			}
		}

		metrics.IncEmailSendAttempt(d.sender.Name(), "transient")
		log.Warn().Err(err).Int("attempt", attempt).Msg("transient transport failure")
		lastErr = err
		if attempt < d.maxAttempts {
			time.Sleep(d.backoff << (attempt - 1))
		}
	}

	return ndomain.Outcome{
		Status:        ndomain.StatusFailedExhausted,
		Reason:        lastErr.Error(),
		Attempts:      d.maxAttempts,
		CorrelationID: rec.ID,
	}
}

// finish records the terminal outcome: metrics, audit log, event, log line.
func (d *Dispatcher) finish(ctx context.Context, log zerolog.Logger, out ndomain.Outcome) ndomain.Outcome {
	metrics.IncNotifyOutcome(string(out.Status))

	if d.outcomes != nil {
		if err := d.outcomes.Append(ctx, out); err != nil {
			log.Warn().Err(err).Msg("notification outcome log append failed")
		}
	}
	if d.events != nil {
		_ = d.events.Publish(ctx, evdomain.Event{
			Type:       eventType(out.Status),
			ReferralID: out.CorrelationID,
			Meta: map[string]string{
				"partner": out.Partner,
				"outcome": string(out.Status),
				"reason":  out.Reason,
			},
			Time: time.Now().UTC(),
		})
	}

	ev := log.Info()
	if out.Failed() {
		ev = log.Error()
	}
	ev.Str("outcome", string(out.Status)).
		Str("partner", out.Partner).
		Str("provider_ref", out.ProviderRef).
		Int("attempts", out.Attempts).
		Str("reason", out.Reason).
		Msg("notification dispatch finished")
	return out
}

func eventType(s ndomain.Status) string {
	switch s {
	case ndomain.StatusDelivered:
		return "notify.delivered"
	case ndomain.StatusSkipped:
		return "notify.skipped"
	default:
		return "notify.failed"
	}
}
