package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	ndomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/platform/validation"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

type Controller struct {
	svc domain.Service
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

func (h *Controller) Register(g *echo.Group) {
	g.POST("/referrals", h.createReferral)
	g.GET("/referrals", h.listReferrals)
	g.GET("/referrals/:id", h.getReferral)
	g.PUT("/referrals/:id", h.updateReferral)
	g.PATCH("/referrals/:id/confirm", h.confirmReferral)
	g.DELETE("/referrals/:id", h.deleteReferral)
}

// referred is a pointer so a request that omits the key entirely fails
// validation while an explicit empty string ("no partner selected") passes.
type createReferralReq struct {
	Name      string  `json:"name" validate:"required"`
	Business  string  `json:"business" validate:"required"`
	Type      string  `json:"type" validate:"required"`
	Date      string  `json:"date"`
	Referred  *string `json:"referred" validate:"required"`
	Initials  string  `json:"initials"`
	Confirmed bool    `json:"confirmed"`
	Notes     string  `json:"notes"`
	Stage     string  `json:"stage"`
}

type createReferralResp struct {
	Referral     domain.Referral `json:"referral"`
	Notification ndomain.Outcome `json:"notification"`
}

// createReferral persists a referral and reports its notification outcome.
// A failed notification is reported in the payload, not as a request
// failure: the record's existence is authoritative on its own.
func (h *Controller) createReferral(c echo.Context) error {
	var req createReferralReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
	}

	rec, outcome, err := h.svc.Create(c.Request().Context(), domain.CreateInput{
		Name:        req.Name,
		Business:    req.Business,
		Type:        req.Type,
		Date:        date,
		Referred:    *req.Referred,
		Initials:    req.Initials,
		Confirmed:   req.Confirmed,
		Notes:       req.Notes,
		Stage:       req.Stage,
		OwnerUserID: userID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		// Store failures stay server-side; pgx errors can carry DSN detail.
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create referral"})
	}
	return c.JSON(http.StatusCreated, createReferralResp{Referral: rec, Notification: outcome})
}

func (h *Controller) listReferrals(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list referrals"})
	}
	if items == nil {
		items = []domain.Referral{}
	}
	return c.JSON(http.StatusOK, map[string]any{"referrals": items})
}

func (h *Controller) getReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	rec, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

type updateReferralReq struct {
	Name      string `json:"name" validate:"required"`
	Business  string `json:"business" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Date      string `json:"date"`
	Referred  string `json:"referred"`
	Initials  string `json:"initials"`
	Confirmed bool   `json:"confirmed"`
	Notes     string `json:"notes"`
	Stage     string `json:"stage"`
}

func (h *Controller) updateReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req updateReferralReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
	}

	rec, err := h.svc.Update(c.Request().Context(), id, domain.UpdateInput{
		Name:      req.Name,
		Business:  req.Business,
		Type:      req.Type,
		Date:      date,
		Referred:  req.Referred,
		Initials:  req.Initials,
		Confirmed: req.Confirmed,
		Notes:     req.Notes,
		Stage:     req.Stage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "referral not found"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update referral"})
	}
	return c.JSON(http.StatusOK, rec)
}

type confirmReq struct {
	Confirmed bool `json:"confirmed"`
}

func (h *Controller) confirmReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	rec, err := h.svc.SetConfirmed(c.Request().Context(), id, req.Confirmed)
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Controller) deleteReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return notFoundOr500(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func notFoundOr500(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "referral not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// userID reads the authenticated user set by an upstream gateway, if any.
// Authentication itself lives outside this service.
func userID(c echo.Context) string {
	return c.Request().Header.Get("X-User-Id")
}
