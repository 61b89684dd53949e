package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
)

// Service sends registration-confirmation links through the shared mail
// transport. The link targets the frontend, which owns the actual
// confirmation flow.
type Service struct {
	sender edomain.Sender
	base   string
	from   string
	log    zerolog.Logger
}

func New(sender edomain.Sender, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{sender: sender, base: cfg.FrontendBaseURL, from: cfg.FromEmail, log: log}
}

const confirmationBody = `Hi there!

Please confirm your registration by clicking the link below:

%s

If you did not sign up, you can ignore this.
`

func (s *Service) SendConfirmation(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/confirm-email?token=%s", s.base, url.QueryEscape(token))
	msg := edomain.Message{
		From:          s.from,
		To:            email,
		Subject:       "Please confirm your registration",
		Text:          fmt.Sprintf(confirmationBody, link),
		CorrelationID: uuid.NewString(),
	}
	res, err := s.sender.Send(ctx, msg)
	if err != nil {
		return err
	}
	s.log.Info().Str("provider_ref", res.ProviderRef).Msg("confirmation email sent")
	return nil
}
