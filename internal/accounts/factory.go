package accounts

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	ctrl "github.com/israelsanchezdev/entrepreneur-dashboard/internal/accounts/controller"
	svc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/accounts/service"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
)

// Register wires the account-confirmation email endpoint.
func Register(g *echo.Group, sender edomain.Sender, cfg config.Config, log zerolog.Logger) {
	ctrl.New(svc.New(sender, cfg, log)).Register(g)
}
