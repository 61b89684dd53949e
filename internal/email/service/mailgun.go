package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	"github.com/rs/zerolog"
)

// Ensure Mailgun implements domain.Sender
var _ edomain.Sender = (*Mailgun)(nil)

// Mailgun sends through the Mailgun v3 messages API (api key + domain).
type Mailgun struct {
	apiKey  string
	baseURL string
	domain  string
	http    *http.Client
	log     zerolog.Logger
}

func NewMailgun(cfg config.Config, log zerolog.Logger) *Mailgun {
	return &Mailgun{
		apiKey:  cfg.MailgunAPIKey,
		baseURL: cfg.MailgunBaseURL,
		domain:  cfg.MailgunDomain,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (m *Mailgun) Name() string { return "mailgun" }

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (m *Mailgun) Send(ctx context.Context, msg edomain.Message) (edomain.Result, error) {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return edomain.Result{}, edomain.Rejected(m.Name(), fmt.Errorf("invalid recipient %q: %w", msg.To, err))
	}

	form := url.Values{}
	form.Set("from", msg.From)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}
	form.Set("v:correlation_id", msg.CorrelationID)

	endpoint := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return edomain.Result{}, edomain.Transient(m.Name(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.http.Do(req)
	if err != nil {
		return edomain.Result{}, edomain.Transient(m.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	switch {
	case resp.StatusCode < 300:
		var out mailgunResponse
		_ = json.Unmarshal(body, &out)
		return edomain.Result{ProviderRef: out.ID}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return edomain.Result{}, edomain.Transient(m.Name(), fmt.Errorf("mailgun: %s: %s", resp.Status, strings.TrimSpace(string(body))))
	default:
		// Remaining 4xx: the provider refused this message or these
		// credentials; retrying the same request cannot help.
		return edomain.Result{}, edomain.Rejected(m.Name(), fmt.Errorf("mailgun: %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}
}
