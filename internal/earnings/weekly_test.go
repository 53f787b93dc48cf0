package earnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mhenders/ibdash/internal/orders"
)

func ptr[T any](v T) *T { return &v }

func filledOrder(id int64, fill float64, qty int, createdAt time.Time) orders.Order {
	return orders.Order{
		ID:           id,
		Ticker:       "AAPL",
		Quantity:     qty,
		Status:       orders.StatusExecuted,
		AvgFillPrice: ptr(fill),
		Commission:   0.65,
		CreatedAt:    orders.NewTimestamp(createdAt),
	}
}

func TestWeekStart(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday maps to preceding sunday",
			in:   time.Date(2025, 1, 8, 15, 30, 0, 0, loc),
			want: time.Date(2025, 1, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday maps to itself at midnight",
			in:   time.Date(2025, 1, 5, 23, 59, 59, 0, loc),
			want: time.Date(2025, 1, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "saturday stays in the same week",
			in:   time.Date(2025, 1, 11, 1, 0, 0, 0, loc),
			want: time.Date(2025, 1, 5, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestNetPremium(t *testing.T) {
	o := filledOrder(1, 1.85, 1, time.Now())
	assert.InDelta(t, 184.35, NetPremium(o), 1e-9)

	o2 := filledOrder(2, 1.10, 2, time.Now())
	assert.InDelta(t, 219.35, NetPremium(o2), 1e-9)

	o.AvgFillPrice = nil
	assert.Zero(t, NetPremium(o))
}

func TestSummarizeCurrentWeek(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	inWeek1 := filledOrder(1, 1.85, 1, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC))
	inWeek2 := filledOrder(2, 1.10, 2, time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC))
	lastWeek := filledOrder(3, 3.00, 1, time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC))
	nextWeek := filledOrder(4, 3.00, 1, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC))

	got := Summarize([]orders.Order{inWeek1, inWeek2, lastWeek, nextWeek}, now)

	assert.Equal(t, 2, got.Count)
	assert.InDelta(t, 403.70, got.TotalEarnings, 1e-9)
	assert.InDelta(t, 201.85, got.AveragePremium, 1e-9)
}

func TestSummarizeWeekBoundaries(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	sundayMidnight := filledOrder(1, 1.85, 1, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	saturdayLate := filledOrder(2, 1.85, 1, time.Date(2025, 1, 11, 23, 59, 59, 0, time.UTC))
	nextSundayMidnight := filledOrder(3, 1.85, 1, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC))

	got := Summarize([]orders.Order{sundayMidnight, saturdayLate, nextSundayMidnight}, now)
	assert.Equal(t, 2, got.Count)
}

func TestSummarizeEmptyAndUndated(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	got := Summarize(nil, now)
	assert.Equal(t, WeeklySummary{}, got)

	undated := filledOrder(1, 1.85, 1, time.Time{})
	undated.CreatedAt = orders.NoDate()

	noFill := filledOrder(2, 0, 1, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))
	noFill.AvgFillPrice = nil

	got = Summarize([]orders.Order{undated, noFill}, now)
	assert.Equal(t, WeeklySummary{}, got)
}
