package stats

import (
	"github.com/labstack/echo/v4"

	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
	ctrl "github.com/israelsanchezdev/entrepreneur-dashboard/internal/stats/controller"
)

// Register wires the reporting endpoint over the referral store.
func Register(g *echo.Group, repo rdomain.Repository) {
	ctrl.New(repo).Register(g)
}
