package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/directory"
	nsvc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/service"
	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

// Controller exposes the standalone partner-notification endpoint kept for
// callers that dispatch outside the referral-creation flow.
type Controller struct {
	dispatcher *nsvc.Dispatcher
	dir        *directory.Directory
}

func New(dispatcher *nsvc.Dispatcher, dir *directory.Directory) *Controller {
	return &Controller{dispatcher: dispatcher, dir: dir}
}

func (h *Controller) Register(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.POST("/notifications/partner", h.sendPartnerNotification, mw...)
}

type partnerNotificationReq struct {
	To           string `json:"to"`
	Partner      string `json:"partner"`
	Name         string `json:"name"`
	Entrepreneur string `json:"entrepreneur"`
	Business     string `json:"business"`
	Date         string `json:"date"`
	Initials     string `json:"initials"`
	Notes        string `json:"notes"`
	Stage        string `json:"stage"`
}

// sendPartnerNotification delivers one notification for an ad hoc referral
// payload. Non-POST methods get 405 from the router; a missing or unknown
// partner is a 400 naming the partner; a transport failure is a 500 with a
// diagnostic detail string.
func (h *Controller) sendPartnerNotification(c echo.Context) error {
	var req partnerNotificationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}

	partner := strings.TrimSpace(req.Partner)
	if partner == "" {
		partner = strings.TrimSpace(req.Name)
	}

	toAddress := strings.TrimSpace(req.To)
	if toAddress == "" {
		addr, err := h.dir.Resolve(partner)
		if err != nil {
			if errors.Is(err, directory.ErrNoPartner) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing recipient or partner"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Unknown partner: %s", partner)})
		}
		toAddress = addr
	}

	rec := rdomain.Referral{
		ID:               uuid.New(),
		EntrepreneurName: req.Entrepreneur,
		BusinessName:     req.Business,
		ContactDate:      parseDate(req.Date),
		ReferredPartner:  partner,
		Initials:         req.Initials,
		Notes:            req.Notes,
		Stage:            parseStageLenient(req.Stage),
	}

	out := h.dispatcher.Deliver(c.Request().Context(), rec, toAddress)
	if out.Failed() {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send partner notification",
			"details": out.Reason,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":        "Partner notified by email",
		"correlation_id": out.CorrelationID,
		"provider_ref":   out.ProviderRef,
	})
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseStageLenient keeps the historic endpoint permissive: unknown stage
// values pass through verbatim instead of failing the whole notification.
func parseStageLenient(s string) rdomain.Stage {
	if st, err := rdomain.ParseStage(s); err == nil {
		return st
	}
	return rdomain.Stage(strings.TrimSpace(s))
}
