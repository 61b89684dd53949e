package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// referralsCreatedTotal counts persisted referrals by stage.
	referralsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "referrals",
			Name:      "created_total",
			Help:      "Referrals persisted, by stage.",
		},
		[]string{"stage"},
	)

	// notifyOutcomesTotal counts terminal dispatch outcomes.
	// Labels:
	// - outcome: skipped | delivered | failed_unknown_partner | failed_rejected | failed_exhausted
	notifyOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "notify",
			Name:      "outcomes_total",
			Help:      "Terminal notification dispatch outcomes.",
		},
		[]string{"outcome"},
	)

	// emailSendAttemptsTotal counts individual transport send attempts.
	// Labels:
	// - provider: smtp | mailgun
	// - result: accepted | rejected | transient
	emailSendAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "email",
			Name:      "send_attempts_total",
			Help:      "Transport send attempts by provider and result.",
		},
		[]string{"provider", "result"},
	)

	// rateLimitExceededTotal counts requests refused by a rate-limit policy.
	rateLimitExceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Requests refused by rate limiting, by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// IncReferralCreated increments the referral creation counter.
func IncReferralCreated(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	referralsCreatedTotal.WithLabelValues(stage).Inc()
}

// IncNotifyOutcome increments the dispatch outcome counter.
func IncNotifyOutcome(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	notifyOutcomesTotal.WithLabelValues(outcome).Inc()
}

// IncEmailSendAttempt increments the transport attempt counter.
func IncEmailSendAttempt(provider, result string) {
	if provider == "" {
		provider = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	emailSendAttemptsTotal.WithLabelValues(provider, result).Inc()
}

// IncRateLimitExceeded increments the rate-limit refusal counter.
func IncRateLimitExceeded(endpoint string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	rateLimitExceededTotal.WithLabelValues(endpoint).Inc()
}
