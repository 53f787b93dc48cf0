// Package earnings aggregates realized premium from filled orders.
package earnings

import (
	"time"

	"github.com/mhenders/ibdash/internal/orders"
)

const contractMultiplier = 100

// WeeklySummary holds the realized premium figures for one calendar week.
type WeeklySummary struct {
	Count          int     `json:"count"`
	TotalEarnings  float64 `json:"totalEarnings"`
	AveragePremium float64 `json:"averagePremium"`
}

// WeekStart returns the Sunday 00:00:00 that opens the calendar week
// containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// NetPremium returns the realized premium for a single filled order:
// fill price times the contract multiplier times quantity, less commission.
func NetPremium(o orders.Order) float64 {
	if o.AvgFillPrice == nil {
		return 0
	}
	return *o.AvgFillPrice*contractMultiplier*float64(o.Quantity) - o.Commission
}

// Summarize computes the weekly summary over the filled orders whose
// creation time falls inside the calendar week containing now. Orders
// without a usable creation date are excluded: they cannot be attributed
// to any week.
func Summarize(filled []orders.Order, now time.Time) WeeklySummary {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)

	var summary WeeklySummary
	for _, o := range filled {
		if !o.CountsAsFilled() || !o.CreatedAt.HasDate() {
			continue
		}

		ts := o.CreatedAt.Time().In(now.Location())
		if ts.Before(start) || !ts.Before(end) {
			continue
		}

		summary.Count++
		summary.TotalEarnings += NetPremium(o)
	}

	if summary.Count > 0 {
		summary.AveragePremium = summary.TotalEarnings / float64(summary.Count)
	}

	return summary
}
