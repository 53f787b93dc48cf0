package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhenders/ibdash/pkg/logger"
)

func ptr[T any](v T) *T { return &v }

func testOrder(id int64, status Status, created time.Time) Order {
	return Order{
		ID:         id,
		Ticker:     "AAPL",
		OptionType: "CALL",
		Strike:     190,
		Expiration: "20250620",
		Quantity:   1,
		Status:     status,
		CreatedAt:  NewTimestamp(created),
	}
}

func TestStoreLoadAndFind(t *testing.T) {
	s := NewStore(logger.NewNop())

	s.Load([]Order{
		testOrder(1, StatusPending, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		testOrder(2, StatusPending, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
	})

	require.Equal(t, 2, s.Len())

	o, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "AAPL", o.Ticker)

	_, ok = s.Find(99)
	assert.False(t, ok)

	// A second load replaces, never appends
	s.Load([]Order{testOrder(3, StatusPending, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC))})
	assert.Equal(t, 1, s.Len())
	_, ok = s.Find(1)
	assert.False(t, ok)
}

func TestStorePendingOrderedNewestFirst(t *testing.T) {
	s := NewStore(logger.NewNop())

	oldest := testOrder(1, StatusPending, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	newest := testOrder(2, StatusPending, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC))
	middle := testOrder(3, StatusPending, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	undated := testOrder(4, StatusPending, time.Time{})

	s.Load([]Order{oldest, newest, middle, undated})

	got := s.Pending()
	require.Len(t, got, 4)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, int64(1), got[2].ID)
	assert.Equal(t, int64(4), got[3].ID, "undated orders go last")
}

func TestStoreMerge(t *testing.T) {
	s := NewStore(logger.NewNop())
	s.Load([]Order{testOrder(42, StatusProcessing, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))})

	frag := Fragment{
		ID:           42,
		Status:       ptr(StatusExecuted),
		AvgFillPrice: ptr(1.85),
		Filled:       ptr(1),
		Remaining:    ptr(0),
	}

	merged, err := s.Merge(42, frag)
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, merged.Status)
	require.NotNil(t, merged.AvgFillPrice)
	assert.Equal(t, 1.85, *merged.AvgFillPrice)
	assert.False(t, merged.LastUpdated.IsZero())

	// Fields absent from the fragment stay untouched
	assert.Equal(t, "AAPL", merged.Ticker)
	assert.Equal(t, 1, merged.Quantity)
}

func TestStoreMergeIdempotent(t *testing.T) {
	s := NewStore(logger.NewNop())
	s.Load([]Order{testOrder(42, StatusProcessing, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))})

	frag := Fragment{
		ID:           42,
		Status:       ptr(StatusExecuted),
		AvgFillPrice: ptr(1.85),
	}

	first, err := s.Merge(42, frag)
	require.NoError(t, err)

	second, err := s.Merge(42, frag)
	require.NoError(t, err)

	// LastUpdated moves, everything else is identical
	first.LastUpdated = second.LastUpdated
	assert.Equal(t, first, second)
}

func TestStoreMergeNotFound(t *testing.T) {
	s := NewStore(logger.NewNop())

	_, err := s.Merge(7, Fragment{ID: 7, Status: ptr(StatusExecuted)})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreMergeNeverReintroducesPending(t *testing.T) {
	s := NewStore(logger.NewNop())
	s.Load([]Order{testOrder(1, StatusProcessing, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))})

	merged, err := s.Merge(1, Fragment{ID: 1, Status: ptr(StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, merged.Status, "stale pending status must not roll the order back")
}

func TestStoreHasTransient(t *testing.T) {
	s := NewStore(logger.NewNop())

	s.Load([]Order{
		testOrder(1, StatusPending, time.Now()),
		testOrder(2, StatusExecuted, time.Now()),
		testOrder(3, StatusCanceled, time.Now()),
		testOrder(4, StatusRejected, time.Now()),
	})
	assert.False(t, s.HasTransient(), "no order is processing or canceling")

	_, err := s.Merge(1, Fragment{ID: 1, Status: ptr(StatusProcessing)})
	require.NoError(t, err)
	assert.True(t, s.HasTransient())

	_, err = s.Merge(1, Fragment{ID: 1, Status: ptr(StatusExecuted)})
	require.NoError(t, err)
	assert.False(t, s.HasTransient())
}

func TestStoreLoadFilledDropsMissingFillPrice(t *testing.T) {
	s := NewStore(logger.NewNop())

	withPrice := testOrder(1, StatusExecuted, time.Now())
	withPrice.AvgFillPrice = ptr(2.5)

	withoutPrice := testOrder(2, StatusExecuted, time.Now())

	notExecuted := testOrder(3, StatusCanceled, time.Now())
	notExecuted.AvgFillPrice = ptr(1.0)

	s.LoadFilled([]Order{withPrice, withoutPrice, notExecuted})

	filled := s.Filled()
	require.Len(t, filled, 1)
	assert.Equal(t, int64(1), filled[0].ID)
}

func TestStoreSetQuantity(t *testing.T) {
	s := NewStore(logger.NewNop())
	s.Load([]Order{testOrder(1, StatusPending, time.Now())})

	o, err := s.SetQuantity(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, o.Quantity)

	_, err = s.SetQuantity(2, 5)
	assert.True(t, errors.Is(err, ErrNotFound))
}
