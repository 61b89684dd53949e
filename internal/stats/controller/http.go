package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
	svc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/stats/service"
)

const defaultActivityLimit = 10

type Controller struct {
	repo rdomain.Repository
}

func New(repo rdomain.Repository) *Controller {
	return &Controller{repo: repo}
}

func (h *Controller) Register(g *echo.Group) {
	g.GET("/stats", h.getSnapshot)
}

// getSnapshot recomputes the aggregate snapshot from the current record
// set. There is no cached state to invalidate: identical record sets yield
// identical snapshots.
func (h *Controller) getSnapshot(c echo.Context) error {
	records, err := h.repo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load referrals"})
	}

	limit := defaultActivityLimit
	if v := c.QueryParam("activity_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	snap := svc.Summarize(records, time.Now().UTC(), limit)
	return c.JSON(http.StatusOK, snap)
}
