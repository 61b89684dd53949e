package notify

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/directory"
	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	evdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/domain"
	ctrl "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/controller"
	svc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify/service"
)

// NewDispatcher wires the notification dispatcher.
func NewDispatcher(dir *directory.Directory, sender edomain.Sender, events evdomain.Publisher, cfg config.Config, log zerolog.Logger) *svc.Dispatcher {
	return svc.New(dir, sender, events, cfg, log)
}

// Register mounts the standalone notification endpoint on the API group.
func Register(g *echo.Group, d *svc.Dispatcher, dir *directory.Directory, mw ...echo.MiddlewareFunc) {
	ctrl.New(d, dir).Register(g, mw...)
}
