package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	svc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/accounts/service"
)

type Controller struct {
	svc *svc.Service
}

func New(s *svc.Service) *Controller {
	return &Controller{svc: s}
}

func (h *Controller) Register(g *echo.Group) {
	g.POST("/accounts/confirmation-email", h.sendConfirmationEmail)
}

type confirmationReq struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (h *Controller) sendConfirmationEmail(c echo.Context) error {
	var req confirmationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if req.Email == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing email or token"})
	}
	if err := h.svc.SendConfirmation(c.Request().Context(), req.Email, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Confirmation email sent"})
}
