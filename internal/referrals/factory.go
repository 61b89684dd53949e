package referrals

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	evdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/domain"
	ctrl "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/controller"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
	repo "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/repository"
	svc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/service"
)

// NewRepository builds the postgres-backed store gateway. The same value
// also serves as the dispatcher's outcome audit log.
func NewRepository(pg *pgxpool.Pool) *repo.Postgres {
	return repo.New(pg)
}

// Register wires the referrals module and registers HTTP routes.
func Register(g *echo.Group, r domain.Repository, notifier domain.Notifier, events evdomain.Publisher, log zerolog.Logger) {
	s := svc.New(r, notifier, events, log)
	ctrl.New(s).Register(g)
}
