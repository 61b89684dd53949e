package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/directory"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/logger"
	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
)

type fakeSender struct {
	calls   int
	results []error // consumed per call; nil means accepted
	lastMsg edomain.Message
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(ctx context.Context, msg edomain.Message) (edomain.Result, error) {
	f.calls++
	f.lastMsg = msg
	var err error
	if len(f.results) > 0 {
		err, f.results = f.results[0], f.results[1:]
	}
	if err != nil {
		return edomain.Result{}, err
	}
	return edomain.Result{ProviderRef: "ref-1"}, nil
}

func testDispatcher(t *testing.T, sender edomain.Sender) *Dispatcher {
	t.Helper()
	cfg := config.Config{
		FromEmail:          "referrals@example.org",
		NotifyMaxAttempts:  3,
		NotifyRetryBackoff: time.Millisecond,
		NotifySendTimeout:  time.Second,
	}
	dir := directory.New([]directory.Entry{{DisplayName: "Go Topeka", ContactAddress: "partner@example.org"}})
	return New(dir, sender, nil, cfg, logger.Nop())
}

func TestNotify_Delivered(t *testing.T) {
	fake := &fakeSender{}
	d := testDispatcher(t, fake)
	rec := sampleReferral()

	out := d.Notify(context.Background(), rec)
	if out.Status != ndomain.StatusDelivered {
		t.Fatalf("status = %s, want delivered (%s)", out.Status, out.Reason)
	}
	if out.ProviderRef != "ref-1" || out.Attempts != 1 {
		t.Errorf("out = %+v", out)
	}
	if fake.lastMsg.To != "partner@example.org" {
		t.Errorf("sent to %q", fake.lastMsg.To)
	}
	if out.CorrelationID != rec.ID {
		t.Errorf("correlation id = %s", out.CorrelationID)
	}
}

func TestNotify_SkippedWithoutTransportCall(t *testing.T) {
	fake := &fakeSender{}
	d := testDispatcher(t, fake)
	rec := sampleReferral()
	rec.ReferredPartner = ""

	out := d.Notify(context.Background(), rec)
	if out.Status != ndomain.StatusSkipped {
		t.Fatalf("status = %s, want skipped", out.Status)
	}
	if fake.calls != 0 {
		t.Errorf("transport called %d times for a skipped dispatch", fake.calls)
	}
}

func TestNotify_UnknownPartner(t *testing.T) {
	fake := &fakeSender{}
	d := testDispatcher(t, fake)
	rec := sampleReferral()
	rec.ReferredPartner = "Unknown Org"

	out := d.Notify(context.Background(), rec)
	if out.Status != ndomain.StatusFailedUnknownPartner {
		t.Fatalf("status = %s, want failed_unknown_partner", out.Status)
	}
	if out.Partner != "Unknown Org" {
		t.Errorf("partner = %q", out.Partner)
	}
	if fake.calls != 0 {
		t.Error("transport must not be called for an unknown partner")
	}
}

func TestNotify_RejectedIsNeverRetried(t *testing.T) {
	fake := &fakeSender{results: []error{edomain.Rejected("fake", errors.New("bad address"))}}
	d := testDispatcher(t, fake)

	out := d.Notify(context.Background(), sampleReferral())
	if out.Status != ndomain.StatusFailedRejected {
		t.Fatalf("status = %s, want failed_rejected", out.Status)
	}
	if fake.calls != 1 {
		t.Errorf("rejected send retried: %d calls", fake.calls)
	}
}

func TestNotify_TransientRetriesThenExhausts(t *testing.T) {
	fake := &fakeSender{results: []error{
		edomain.Transient("fake", errors.New("timeout 1")),
		edomain.Transient("fake", errors.New("timeout 2")),
		edomain.Transient("fake", errors.New("timeout 3")),
	}}
	d := testDispatcher(t, fake)

	out := d.Notify(context.Background(), sampleReferral())
	if out.Status != ndomain.StatusFailedExhausted {
		t.Fatalf("status = %s, want failed_exhausted", out.Status)
	}
	if fake.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", fake.calls)
	}
	if out.Attempts != 3 || out.Reason == "" {
		t.Errorf("out = %+v", out)
	}
}

func TestNotify_ZeroAttemptBoundStillSendsOnce(t *testing.T) {
	fake := &fakeSender{results: []error{edomain.Transient("fake", errors.New("timeout"))}}
	cfg := config.Config{
		FromEmail:         "referrals@example.org",
		NotifySendTimeout: time.Second,
	}
	dir := directory.New([]directory.Entry{{DisplayName: "Go Topeka", ContactAddress: "partner@example.org"}})
	d := New(dir, fake, nil, cfg, logger.Nop())

	out := d.Notify(context.Background(), sampleReferral())
	if out.Status != ndomain.StatusFailedExhausted {
		t.Fatalf("status = %s, want failed_exhausted", out.Status)
	}
	if fake.calls != 1 || out.Attempts != 1 {
		t.Errorf("calls = %d, attempts = %d, want exactly one", fake.calls, out.Attempts)
	}
	if out.Reason == "" {
		t.Error("reason must carry the last transient failure")
	}
}

func TestNotify_TransientThenSuccess(t *testing.T) {
	fake := &fakeSender{results: []error{
		edomain.Transient("fake", errors.New("blip")),
		nil,
	}}
	d := testDispatcher(t, fake)

	out := d.Notify(context.Background(), sampleReferral())
	if out.Status != ndomain.StatusDelivered {
		t.Fatalf("status = %s, want delivered", out.Status)
	}
	if out.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", out.Attempts)
	}
}

func TestNotify_CallerCancellationDoesNotAbortDispatch(t *testing.T) {
	fake := &fakeSender{}
	d := testDispatcher(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := d.Notify(ctx, sampleReferral())
	if out.Status != ndomain.StatusDelivered {
		t.Fatalf("status = %s, want delivered despite cancelled caller", out.Status)
	}
}

type captureLog struct{ got []ndomain.Outcome }

func (c *captureLog) Append(ctx context.Context, o ndomain.Outcome) error {
	c.got = append(c.got, o)
	return nil
}

func TestNotify_TerminalOutcomeIsAudited(t *testing.T) {
	fake := &fakeSender{}
	d := testDispatcher(t, fake)
	audit := &captureLog{}
	d.SetOutcomeLog(audit)

	out := d.Notify(context.Background(), sampleReferral())
	if len(audit.got) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audit.got))
	}
	if audit.got[0].Status != out.Status || audit.got[0].CorrelationID != out.CorrelationID {
		t.Errorf("audit row %+v does not match outcome %+v", audit.got[0], out)
	}
}
