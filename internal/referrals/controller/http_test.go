package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/platform/validation"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

type stubService struct {
	createIn   domain.CreateInput
	createOut  domain.Referral
	createNtfy ndomain.Outcome
	createErr  error

	getErr    error
	updateErr error
	deleteErr error
}

func (s *stubService) Create(ctx context.Context, in domain.CreateInput) (domain.Referral, ndomain.Outcome, error) {
	s.createIn = in
	return s.createOut, s.createNtfy, s.createErr
}

func (s *stubService) GetByID(ctx context.Context, id uuid.UUID) (domain.Referral, error) {
	if s.getErr != nil {
		return domain.Referral{}, s.getErr
	}
	return domain.Referral{ID: id}, nil
}

func (s *stubService) List(ctx context.Context) ([]domain.Referral, error) {
	return nil, nil
}

func (s *stubService) Update(ctx context.Context, id uuid.UUID, in domain.UpdateInput) (domain.Referral, error) {
	if s.updateErr != nil {
		return domain.Referral{}, s.updateErr
	}
	return domain.Referral{ID: id}, nil
}

func (s *stubService) SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) (domain.Referral, error) {
	return domain.Referral{ID: id, PartnerConfirmed: confirmed}, nil
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteErr
}

func newTestServer(svc *stubService) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	New(svc).Register(e.Group("/api/v1"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateReferral_ReturnsRecordAndOutcome(t *testing.T) {
	svc := &stubService{
		createOut: domain.Referral{
			ID:               uuid.New(),
			EntrepreneurName: "Jane Doe",
			ReferredPartner:  "Go Topeka",
			Stage:            domain.StageIdeation,
		},
		createNtfy: ndomain.Outcome{Status: ndomain.StatusDelivered, Partner: "Go Topeka", Attempts: 1},
	}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane Doe","business":"Acme","type":"Ideation","referred":"Go Topeka"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Referral     domain.Referral `json:"referral"`
		Notification ndomain.Outcome `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Jane Doe", body.Referral.EntrepreneurName)
	assert.Equal(t, ndomain.StatusDelivered, body.Notification.Status)
	assert.Equal(t, "Go Topeka", svc.createIn.Referred)
}

func TestCreateReferral_EmptyPartnerAccepted(t *testing.T) {
	svc := &stubService{
		createNtfy: ndomain.Outcome{Status: ndomain.StatusSkipped},
	}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane Doe","business":"Acme","type":"Ideation","referred":""}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Notification ndomain.Outcome `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ndomain.StatusSkipped, body.Notification.Status)
}

func TestCreateReferral_StoreFailureIsServerErrorWithoutDetail(t *testing.T) {
	svc := &stubService{
		createErr: errors.New("referrals: create: failed to connect to `host=db-internal.prod user=tracker`"),
	}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane Doe","business":"Acme","type":"Ideation","referred":"Go Topeka"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db-internal.prod")
	assert.NotContains(t, rec.Body.String(), "tracker")
	assert.Contains(t, rec.Body.String(), "failed to create referral")
}

func TestCreateReferral_InvalidInputIsClientError(t *testing.T) {
	svc := &stubService{
		createErr: fmt.Errorf("%w: unknown stage %q", domain.ErrInvalidInput, "Quantum"),
	}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane Doe","business":"Acme","type":"Quantum","referred":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown stage")
}

func TestCreateReferral_MissingReferredKeyRejected(t *testing.T) {
	svc := &stubService{}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane Doe","business":"Acme","type":"Ideation"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.createIn.Name, "service must not be called on validation failure")
}

func TestCreateReferral_MissingNameRejected(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"business":"Acme","type":"Ideation","referred":"Go Topeka"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReferral_BadDateRejected(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodPost, "/api/v1/referrals",
		`{"name":"Jane","business":"Acme","type":"Ideation","referred":"","date":"07/15/2025"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReferral_OwnerFromHeader(t *testing.T) {
	svc := &stubService{}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/referrals",
		strings.NewReader(`{"name":"Jane","business":"Acme","type":"Ideation","referred":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-User-Id", "user-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-42", svc.createIn.OwnerUserID)
}

func TestListReferrals_EmptyIsArrayNotNull(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodGet, "/api/v1/referrals", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"referrals":[]`)
}

func TestGetReferral_NotFound(t *testing.T) {
	e := newTestServer(&stubService{getErr: domain.ErrNotFound})

	rec := doJSON(e, http.MethodGet, "/api/v1/referrals/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReferral_BadID(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodGet, "/api/v1/referrals/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReferral_NotFound(t *testing.T) {
	e := newTestServer(&stubService{updateErr: domain.ErrNotFound})

	rec := doJSON(e, http.MethodPut, "/api/v1/referrals/"+uuid.NewString(),
		`{"name":"Jane","business":"Acme","type":"Planning"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReferral_StoreFailureIsServerError(t *testing.T) {
	e := newTestServer(&stubService{updateErr: errors.New("pool exhausted")})

	rec := doJSON(e, http.MethodPut, "/api/v1/referrals/"+uuid.NewString(),
		`{"name":"Jane","business":"Acme","type":"Planning"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pool exhausted")
}

func TestConfirmReferral_SetsFlag(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodPatch, "/api/v1/referrals/"+uuid.NewString()+"/confirm",
		`{"confirmed":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.Referral
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.PartnerConfirmed)
}

func TestDeleteReferral_NoContent(t *testing.T) {
	e := newTestServer(&stubService{})

	rec := doJSON(e, http.MethodDelete, "/api/v1/referrals/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
