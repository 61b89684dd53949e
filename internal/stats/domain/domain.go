package domain

import (
	"time"

	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

// ActivityItem is one row of the recent-activity feed.
type ActivityItem struct {
	Date             string        `json:"date"`
	EntrepreneurName string        `json:"name"`
	PartnerName      string        `json:"partner"`
	Stage            rdomain.Stage `json:"stage"`
}

// Snapshot is a point-in-time summary of the referral set. It is derived on
// demand and never mutated in place.
type Snapshot struct {
	Total          int                   `json:"total"`
	ByType         map[rdomain.Stage]int `json:"by_type"`
	ByTypePercent  map[rdomain.Stage]int `json:"by_type_percent"`
	RecentCount    int                   `json:"recent_count"`
	MonthlyCount   int                   `json:"monthly_count"`
	MonthlyTrend   map[string]int        `json:"monthly_trend"`
	RecentActivity []ActivityItem        `json:"recent_activity"`
	PartnerTotals  map[string]int        `json:"partner_totals"`
	AsOf           time.Time             `json:"as_of"`
}
