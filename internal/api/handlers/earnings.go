package handlers

import (
	"net/http"
	"time"

	"github.com/mhenders/ibdash/internal/earnings"
	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/pkg/logger"
)

// EarningsHandler handles realized premium endpoints
type EarningsHandler struct {
	store  *orders.Store
	logger *logger.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewEarningsHandler creates a new earnings handler
func NewEarningsHandler(store *orders.Store, log *logger.Logger) *EarningsHandler {
	return &EarningsHandler{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Weekly returns the realized premium summary for the current calendar week
// GET /api/earnings/weekly
func (h *EarningsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	summary := earnings.Summarize(h.store.Filled(), h.now())
	respondJSON(w, http.StatusOK, summary)
}
