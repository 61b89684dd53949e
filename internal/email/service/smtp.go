package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/textproto"
	"sync"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Ensure SMTP implements domain.Sender
var _ edomain.Sender = (*SMTP)(nil)

// SMTP sends through a direct relay session. The session is dialed once and
// reused across sends; on a send failure it is dropped and redialed on the
// next attempt. The mutex keeps a single live session: two sends can never
// race two reconnects into two connections.
type SMTP struct {
	dialer *gomail.Dialer
	log    zerolog.Logger

	mu sync.Mutex
	sc gomail.SendCloser
}

func NewSMTP(cfg config.Config, log zerolog.Logger) *SMTP {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTP{dialer: d, log: log}
}

func (s *SMTP) Name() string { return "smtp" }

// Verify dials the relay and closes the session again. It is a connectivity
// check only: a failure here is for the caller to log, the actual send
// attempt stays authoritative.
func (s *SMTP) Verify() error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp verify: %w", err)
	}
	return sc.Close()
}

func (s *SMTP) Send(ctx context.Context, msg edomain.Message) (edomain.Result, error) {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return edomain.Result{}, edomain.Rejected(s.Name(), fmt.Errorf("invalid recipient %q: %w", msg.To, err))
	}

	msgID := fmt.Sprintf("<%s@founder-tracker>", msg.CorrelationID)
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", msgID)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	// gomail is not context-aware; run the send aside so the caller's
	// timeout is honored. An in-flight send is left to finish rather than
	// aborted, a half-sent message cannot be un-sent.
	done := make(chan error, 1)
	go func() { done <- s.send(m) }()

	select {
	case <-ctx.Done():
		s.log.Warn().Str("correlation_id", msg.CorrelationID).Msg("smtp send still in flight at deadline")
		return edomain.Result{}, edomain.Transient(s.Name(), ctx.Err())
	case err := <-done:
		if err != nil {
			return edomain.Result{}, s.classify(err)
		}
		return edomain.Result{ProviderRef: msgID}, nil
	}
}

func (s *SMTP) send(m *gomail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sc == nil {
		sc, err := s.dialer.Dial()
		if err != nil {
			return err
		}
		s.sc = sc
	}
	if err := gomail.Send(s.sc, m); err != nil {
		// Drop the session so the next send redials.
		_ = s.sc.Close()
		s.sc = nil
		return err
	}
	return nil
}

// Close releases the pooled session, if any.
func (s *SMTP) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sc == nil {
		return nil
	}
	err := s.sc.Close()
	s.sc = nil
	return err
}

// classify maps relay errors onto the retry taxonomy: permanent SMTP codes
// mean the relay refused this message, everything else is infrastructure.
func (s *SMTP) classify(err error) error {
	if code := smtpCode(err); code >= 500 && code < 600 {
		return edomain.Rejected(s.Name(), err)
	}
	return edomain.Transient(s.Name(), err)
}

func smtpCode(err error) int {
	for e := err; e != nil; e = unwrap(e) {
		if tp, ok := e.(*textproto.Error); ok {
			return tp.Code
		}
	}
	return 0
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}
