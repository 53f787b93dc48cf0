// Package gateway implements the HTTP client for the remote order gateway,
// the trading backend that owns order creation and talks to the brokerage.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/pkg/config"
	"github.com/mhenders/ibdash/pkg/httputil"
	"github.com/mhenders/ibdash/pkg/logger"
)

// Client handles communication with the order gateway API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.GatewayConfig
}

// NewClient creates a new gateway client.
func NewClient(cfg config.GatewayConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// FetchOrders returns the order collection. With includeExecuted it returns
// the executed set instead of the pending one.
func (c *Client) FetchOrders(ctx context.Context, includeExecuted bool) ([]orders.Fragment, error) {
	const op = "fetch_orders"

	url := fmt.Sprintf("%s/api/orders?executed=%t", c.cfg.BaseURL, includeExecuted)

	resp, err := c.httpClient.Get(ctx, url, c.headers(false))
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(op, resp)
	}

	var envelope ordersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	frags := make([]orders.Fragment, 0, len(envelope.Orders))
	if err := normalizeFragments(envelope.Orders, &frags); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("normalize orders: %w", err)}
	}

	return frags, nil
}

// Execute submits an execution request for the order.
func (c *Client) Execute(ctx context.Context, id int64) (*ExecuteResult, error) {
	const op = "execute"

	url := fmt.Sprintf("%s/api/orders/%d/execute", c.cfg.BaseURL, id)

	resp, err := c.httpClient.PostJSON(ctx, url, nil, c.headers(true))
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(op, resp)
	}

	var result ExecuteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"order_id":    id,
		"ib_order_id": result.IBOrderID,
	}).Info("Execute request accepted by gateway")

	return &result, nil
}

// Cancel submits a cancellation request for the order.
func (c *Client) Cancel(ctx context.Context, id int64) (*CancelResult, error) {
	const op = "cancel"

	url := fmt.Sprintf("%s/api/orders/%d/cancel", c.cfg.BaseURL, id)

	resp, err := c.httpClient.PostJSON(ctx, url, nil, c.headers(true))
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(op, resp)
	}

	var result CancelResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"order_id":  id,
		"ib_status": result.IBStatus,
	}).Info("Cancel request accepted by gateway")

	return &result, nil
}

// CheckStatus asks the gateway for status deltas on in-flight orders.
func (c *Client) CheckStatus(ctx context.Context) ([]orders.Fragment, error) {
	const op = "check_status"

	url := fmt.Sprintf("%s/api/orders/status", c.cfg.BaseURL)

	resp, err := c.httpClient.Get(ctx, url, c.headers(false))
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(op, resp)
	}

	var envelope statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	if !envelope.Success {
		return nil, &orders.GatewayError{Op: op, Message: envelope.Error}
	}

	frags := make([]orders.Fragment, 0, len(envelope.UpdatedOrders))
	if err := normalizeFragments(envelope.UpdatedOrders, &frags); err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("normalize orders: %w", err)}
	}

	return frags, nil
}

// UpdateQuantity persists a quantity edit for a pending order.
func (c *Client) UpdateQuantity(ctx context.Context, id int64, qty int) error {
	const op = "update_quantity"

	url := fmt.Sprintf("%s/api/orders/%d/quantity", c.cfg.BaseURL, id)
	body := map[string]int{"quantity": qty}

	resp, err := c.httpClient.PatchJSON(ctx, url, body, c.headers(true))
	if err != nil {
		return &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(op, resp)
	}

	return nil
}

// Portfolio returns the account/positions summary as reported by the
// gateway. The payload is passed through untouched; it is presentation
// data, not part of the tracked order state.
func (c *Client) Portfolio(ctx context.Context) (json.RawMessage, error) {
	const op = "portfolio"

	url := fmt.Sprintf("%s/api/portfolio", c.cfg.BaseURL)

	resp, err := c.httpClient.Get(ctx, url, c.headers(false))
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(op, resp)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &orders.GatewayError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	return json.RawMessage(payload), nil
}

// headers builds the per-request header set. Mutating requests carry an
// idempotency key so a retried submission cannot double-execute upstream.
func (c *Client) headers(mutating bool) http.Header {
	h := http.Header{}
	if c.cfg.APIKey != "" {
		h.Set("X-API-Key", c.cfg.APIKey)
	}
	if mutating {
		h.Set("Idempotency-Key", uuid.NewString())
	}
	return h
}

// errorFromResponse builds a GatewayError from a non-2xx response, carrying
// the body's error message (or the status text) for user display.
func errorFromResponse(op string, resp *http.Response) *orders.GatewayError {
	message := http.StatusText(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				message = payload.Error
			} else if payload.Message != "" {
				message = payload.Message
			}
		} else if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
			message = s
		}
	}

	return &orders.GatewayError{Op: op, StatusCode: resp.StatusCode, Message: message}
}
