package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/logger"
)

func mailgunConfig(baseURL string) config.Config {
	return config.Config{
		EmailProvider:  "mailgun",
		MailgunAPIKey:  "key-test",
		MailgunDomain:  "mg.example.org",
		MailgunBaseURL: baseURL,
	}
}

func testMessage() edomain.Message {
	return edomain.Message{
		From:          "referrals@example.org",
		To:            "partner@example.org",
		Subject:       "New Entrepreneur Referral: Jane Doe",
		Text:          "body",
		CorrelationID: "11111111-1111-1111-1111-111111111111",
	}
}

func TestMailgun_SendRequestShape(t *testing.T) {
	var gotPath, gotUser, gotKey string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotKey, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<msg-1@mg.example.org>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	mg := NewMailgun(mailgunConfig(srv.URL), logger.Nop())
	res, err := mg.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if res.ProviderRef != "<msg-1@mg.example.org>" {
		t.Errorf("ProviderRef = %q", res.ProviderRef)
	}
	if gotPath != "/mg.example.org/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "api" || gotKey != "key-test" {
		t.Errorf("basic auth = %q/%q", gotUser, gotKey)
	}
	if gotForm["to"] != "partner@example.org" || gotForm["from"] != "referrals@example.org" {
		t.Errorf("form = %v", gotForm)
	}
	if gotForm["v:correlation_id"] != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("correlation id missing from form: %v", gotForm)
	}
}

func TestMailgun_Classification(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		wantReject bool
	}{
		{"bad request", http.StatusBadRequest, true},
		{"unauthorized", http.StatusUnauthorized, true},
		{"not found", http.StatusNotFound, true},
		{"rate limited", http.StatusTooManyRequests, false},
		{"server error", http.StatusInternalServerError, false},
		{"bad gateway", http.StatusBadGateway, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			mg := NewMailgun(mailgunConfig(srv.URL), logger.Nop())
			_, err := mg.Send(context.Background(), testMessage())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := edomain.IsRejected(err); got != tc.wantReject {
				t.Errorf("IsRejected = %v, want %v (err %v)", got, tc.wantReject, err)
			}
		})
	}
}

func TestMailgun_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	mg := NewMailgun(mailgunConfig(srv.URL), logger.Nop())
	_, err := mg.Send(context.Background(), testMessage())
	if !edomain.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestMailgun_InvalidRecipientRejectedWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	mg := NewMailgun(mailgunConfig(srv.URL), logger.Nop())
	msg := testMessage()
	msg.To = "not an address"
	_, err := mg.Send(context.Background(), msg)
	if !edomain.IsRejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if called {
		t.Error("provider should not be called for an invalid recipient")
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := mailgunConfig("https://api.mailgun.net/v3")
	s, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if s.Name() != "mailgun" {
		t.Errorf("Name = %q", s.Name())
	}

	cfg = config.Config{EmailProvider: "smtp", SMTPHost: "localhost", SMTPPort: 1025}
	s, err = New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if s.Name() != "smtp" {
		t.Errorf("Name = %q", s.Name())
	}

	if _, err := New(config.Config{EmailProvider: "pigeon"}, logger.Nop()); err == nil {
		t.Error("expected error for unknown provider")
	}
}
