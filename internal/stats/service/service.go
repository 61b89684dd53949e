package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/stats/domain"
)

// RecentWindowDays is the default look-back for the recent-contacts count.
const RecentWindowDays = 7

// Summarize derives a snapshot from the referral set as of the given
// instant. It is a pure function of its inputs: records with a missing
// created-at or business type drop out of the affected aggregate only,
// never fail the whole computation.
func Summarize(records []rdomain.Referral, asOf time.Time, activityLimit int) domain.Snapshot {
	snap := domain.Snapshot{
		Total:         len(records),
		ByType:        make(map[rdomain.Stage]int, len(rdomain.Stages)),
		ByTypePercent: make(map[rdomain.Stage]int, len(rdomain.Stages)),
		MonthlyTrend:  map[string]int{},
		PartnerTotals: map[string]int{},
		AsOf:          asOf,
	}
	for _, st := range rdomain.Stages {
		snap.ByType[st] = 0
		snap.ByTypePercent[st] = 0
	}

	windowStart := asOf.AddDate(0, 0, -RecentWindowDays)
	for _, r := range records {
		if r.BusinessType != "" {
			snap.ByType[r.BusinessType]++
		}
		if r.ReferredPartner != "" {
			snap.PartnerTotals[r.ReferredPartner]++
		}
		if r.CreatedAt.IsZero() {
			continue
		}
		if !r.CreatedAt.Before(windowStart) {
			snap.RecentCount++
		}
		if r.CreatedAt.Year() == asOf.Year() && r.CreatedAt.Month() == asOf.Month() {
			snap.MonthlyCount++
		}
		snap.MonthlyTrend[monthKey(r.CreatedAt)]++
	}

	if snap.Total > 0 {
		for st, n := range snap.ByType {
			snap.ByTypePercent[st] = int(math.Round(100 * float64(n) / float64(snap.Total)))
		}
	}

	snap.RecentActivity = RecentActivity(records, activityLimit)
	return snap
}

// RecentActivity returns the n most recently created records, newest first,
// ties kept in input order. Records without a created-at are excluded.
func RecentActivity(records []rdomain.Referral, n int) []domain.ActivityItem {
	dated := make([]rdomain.Referral, 0, len(records))
	for _, r := range records {
		if !r.CreatedAt.IsZero() {
			dated = append(dated, r)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CreatedAt.After(dated[j].CreatedAt)
	})
	if n > 0 && len(dated) > n {
		dated = dated[:n]
	}

	out := make([]domain.ActivityItem, len(dated))
	for i, r := range dated {
		partner := r.ReferredPartner
		if partner == "" {
			partner = "N/A"
		}
		out[i] = domain.ActivityItem{
			Date:             r.CreatedAt.Format("Jan 02, 2006"),
			EntrepreneurName: r.EntrepreneurName,
			PartnerName:      partner,
			Stage:            r.Stage,
		}
	}
	return out
}

// monthKey matches the dashboard's sparse trend key: year-month without
// zero padding.
func monthKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
}
