package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/pkg/logger"
)

// PortfolioSource provides the upstream portfolio snapshot.
type PortfolioSource interface {
	Portfolio(ctx context.Context) (json.RawMessage, error)
}

// PortfolioHandler proxies the gateway's portfolio snapshot to the browser
type PortfolioHandler struct {
	source PortfolioSource
	logger *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(source PortfolioSource, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		source: source,
		logger: log,
	}
}

// Get returns the portfolio snapshot
// GET /api/portfolio
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	payload, err := h.source.Portfolio(r.Context())
	if err != nil {
		if orders.IsGateway(err) {
			h.logger.WithError(err).Error("Portfolio fetch failed")
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
