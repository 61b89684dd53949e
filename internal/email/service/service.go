package service

import (
	"fmt"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	"github.com/rs/zerolog"
)

// New builds the configured transport. Provider selection happens here,
// once per process; everything downstream talks to domain.Sender.
func New(cfg config.Config, log zerolog.Logger) (edomain.Sender, error) {
	switch cfg.EmailProvider {
	case "smtp":
		s := NewSMTP(cfg, log)
		if cfg.SMTPVerifyOnStart {
			// Connectivity check only; the send attempt is authoritative.
			if err := s.Verify(); err != nil {
				log.Warn().Err(err).Msg("smtp verification failed")
			}
		}
		return s, nil
	case "mailgun":
		return NewMailgun(cfg, log), nil
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.EmailProvider)
	}
}
