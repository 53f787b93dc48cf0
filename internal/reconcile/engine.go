// Package reconcile implements the order reconciliation engine: the one
// place that coordinates the local store, the gateway client, and the
// status poller so local lifecycle state converges on what the brokerage
// actually did.
package reconcile

import (
	"context"
	"time"

	"github.com/mhenders/ibdash/internal/gateway"
	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/internal/scheduler"
	"github.com/mhenders/ibdash/pkg/logger"
)

// Gateway is the slice of the gateway client the engine depends on.
type Gateway interface {
	FetchOrders(ctx context.Context, includeExecuted bool) ([]orders.Fragment, error)
	Execute(ctx context.Context, id int64) (*gateway.ExecuteResult, error)
	Cancel(ctx context.Context, id int64) (*gateway.CancelResult, error)
	CheckStatus(ctx context.Context) ([]orders.Fragment, error)
	UpdateQuantity(ctx context.Context, id int64, qty int) error
}

// ChangeFunc is invoked after any operation that altered displayed state.
type ChangeFunc func()

// Engine drives the order lifecycle. All mutations of the store flow
// through it; the HTTP layer and the poller are both callers, never
// owners, of order state.
type Engine struct {
	gateway Gateway
	store   *orders.Store
	poller  *scheduler.Poller
	logger  *logger.Logger

	onChange []ChangeFunc
}

// NewEngine creates an engine polling order status every interval while
// any order is in flight.
func NewEngine(gw Gateway, store *orders.Store, interval time.Duration, log *logger.Logger) *Engine {
	e := &Engine{
		gateway: gw,
		store:   store,
		logger:  log,
	}
	e.poller = scheduler.NewPoller(interval, e.PollStatus, log)
	return e
}

// OnChange registers a callback fired after displayed state changes.
// Registration is not synchronized; register before serving traffic.
func (e *Engine) OnChange(fn ChangeFunc) {
	e.onChange = append(e.onChange, fn)
}

func (e *Engine) notify() {
	for _, fn := range e.onChange {
		fn()
	}
}

// Refresh reloads both order collections from the gateway and reconciles
// the poller with the resulting state.
func (e *Engine) Refresh(ctx context.Context) error {
	pending, err := e.gateway.FetchOrders(ctx, false)
	if err != nil {
		e.logger.WithError(err).Error("Order refresh failed")
		return err
	}

	list := make([]orders.Order, 0, len(pending))
	for i := range pending {
		list = append(list, pending[i].ToOrder())
	}
	e.store.Load(list)

	if err := e.refreshFilled(ctx); err != nil {
		// The working set already loaded; a stale filled collection is
		// the lesser failure and the next refresh heals it.
		e.logger.WithError(err).Warn("Filled-order refresh failed")
	}

	if e.store.HasTransient() {
		e.poller.Start()
	} else {
		e.poller.Stop()
	}

	e.logger.WithField("count", e.store.Len()).Info("Order collections refreshed")
	e.notify()
	return nil
}

// refreshFilled reloads only the filled collection.
func (e *Engine) refreshFilled(ctx context.Context) error {
	frags, err := e.gateway.FetchOrders(ctx, true)
	if err != nil {
		return err
	}

	list := make([]orders.Order, 0, len(frags))
	for i := range frags {
		o := frags[i].ToOrder()
		if o.Status == "" || o.Status == orders.StatusPending {
			o.Status = orders.StatusExecuted
		}
		list = append(list, o)
	}
	e.store.LoadFilled(list)
	return nil
}

// ExecuteOrder submits a pending order for execution. The local order
// moves to processing only after the gateway accepts the request; a
// gateway failure leaves the store untouched.
func (e *Engine) ExecuteOrder(ctx context.Context, id int64) (orders.Order, error) {
	o, ok := e.store.Find(id)
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if o.Status != orders.StatusPending {
		return orders.Order{}, orders.NewValidationError("status",
			"only pending orders can be executed")
	}

	result, err := e.gateway.Execute(ctx, id)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", id).Error("Execute failed")
		return orders.Order{}, err
	}

	frag := executeFragment(result)
	updated, err := e.store.Merge(id, frag)
	if err != nil {
		return orders.Order{}, err
	}

	e.poller.Start()
	e.notify()

	e.logger.WithFields(map[string]interface{}{
		"order_id":    id,
		"ib_order_id": updated.IBOrderID,
		"status":      updated.Status,
	}).Info("Order submitted for execution")

	return updated, nil
}

// executeFragment maps an execute response onto the local order. Without
// execution details the gateway accepted the request but reported nothing
// yet; the order still moves to processing under placeholder brokerage
// fields so the poller takes over.
func executeFragment(result *gateway.ExecuteResult) orders.Fragment {
	status := orders.StatusProcessing
	frag := orders.Fragment{Status: &status}

	if d := result.ExecutionDetails; d != nil {
		frag.IBOrderID = strPtr(d.IBOrderID)
		frag.IBStatus = strPtr(d.IBStatus)
		frag.Filled = intPtr(d.Filled)
		frag.Remaining = intPtr(d.Remaining)
		if d.AvgFillPrice != nil {
			price := *d.AvgFillPrice
			frag.AvgFillPrice = &price
		}
		return frag
	}

	ibOrderID := result.IBOrderID
	if ibOrderID == "" {
		ibOrderID = "Unknown"
	}
	frag.IBOrderID = &ibOrderID
	frag.IBStatus = strPtr("Submitted")
	return frag
}

// CancelOrder asks the gateway to cancel an order. The brokerage decides
// whether cancellation completes immediately or stays in flight; the
// local status follows its answer.
func (e *Engine) CancelOrder(ctx context.Context, id int64) (orders.Order, error) {
	o, ok := e.store.Find(id)
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if o.Status.IsTerminal() || o.Status == orders.StatusCanceling {
		return orders.Order{}, orders.NewValidationError("status",
			"order is not cancelable in its current state")
	}

	result, err := e.gateway.Cancel(ctx, id)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", id).Error("Cancel failed")
		return orders.Order{}, err
	}

	status := orders.StatusCanceled
	if result.IBStatus == "PendingCancel" {
		status = orders.StatusCanceling
	}

	frag := orders.Fragment{Status: &status}
	if result.IBStatus != "" {
		frag.IBStatus = strPtr(result.IBStatus)
	}

	updated, err := e.store.Merge(id, frag)
	if err != nil {
		return orders.Order{}, err
	}

	if status == orders.StatusCanceling {
		e.poller.Start()
	} else if !e.store.HasTransient() {
		e.poller.Stop()
	}
	e.notify()

	e.logger.WithFields(map[string]interface{}{
		"order_id": id,
		"status":   updated.Status,
	}).Info("Order cancellation processed")

	return updated, nil
}

// UpdateQuantity changes the quantity of a pending order, locally first
// and then at the gateway. A validation failure touches nothing; a
// gateway failure after the local edit leaves the local value standing,
// reported alongside the error, and the next refresh reconciles it.
func (e *Engine) UpdateQuantity(ctx context.Context, id int64, qty int) (orders.Order, error) {
	if qty <= 0 {
		return orders.Order{}, orders.NewValidationError("quantity",
			"quantity must be a positive integer")
	}

	o, ok := e.store.Find(id)
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if o.Status != orders.StatusPending {
		return orders.Order{}, orders.NewValidationError("status",
			"quantity can only be changed while the order is pending")
	}

	updated, err := e.store.SetQuantity(id, qty)
	if err != nil {
		return orders.Order{}, err
	}
	e.notify()

	if err := e.gateway.UpdateQuantity(ctx, id, qty); err != nil {
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"order_id": id,
			"quantity": qty,
		}).Error("Gateway rejected quantity update; local value retained")
		return updated, err
	}

	e.logger.WithFields(map[string]interface{}{
		"order_id": id,
		"quantity": qty,
	}).Info("Order quantity updated")

	return updated, nil
}

// PollStatus performs one status-check round: fetch deltas, merge them,
// reload the filled collection when something executed, and stop the
// poller once nothing is left in flight. Poll failures are logged and
// swallowed; the next tick retries.
func (e *Engine) PollStatus(ctx context.Context) {
	frags, err := e.gateway.CheckStatus(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("Status poll failed")
		return
	}

	changed := false
	executed := false

	for i := range frags {
		prev, ok := e.store.Find(frags[i].ID)
		if !ok {
			// Unknown id in a delta: the full refresh will pick it up
			continue
		}

		updated, err := e.store.Merge(frags[i].ID, frags[i])
		if err != nil {
			continue
		}
		changed = true

		// Only a transition into executed warrants a filled reload; a
		// delta touching an already-executed order does not.
		if updated.Status == orders.StatusExecuted && prev.Status != orders.StatusExecuted {
			executed = true
		}
	}

	if executed {
		if err := e.refreshFilled(ctx); err != nil {
			e.logger.WithError(err).Warn("Filled-order refresh after execution failed")
		}
	}

	if !e.store.HasTransient() {
		e.poller.Stop()
	}

	if changed {
		e.notify()
	}
}

// PollerActive reports whether the status poller currently runs.
func (e *Engine) PollerActive() bool {
	return e.poller.Active()
}

// Stop halts background polling. Called on shutdown.
func (e *Engine) Stop() {
	e.poller.Stop()
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
