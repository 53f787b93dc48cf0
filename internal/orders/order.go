// Package orders defines the option order data model and the in-memory
// order store that is the single source of truth for displayed state.
package orders

import "time"

// Status is the local lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCanceling  Status = "canceling"
	StatusExecuted   Status = "executed"
	StatusCanceled   Status = "canceled"
	StatusRejected   Status = "rejected"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusExecuted || s == StatusCanceled || s == StatusRejected
}

// IsTransient reports whether the order is waiting on the gateway and
// should keep the status poller running.
func (s Status) IsTransient() bool {
	return s == StatusProcessing || s == StatusCanceling
}

// Order represents a single option order tracked by the dashboard.
// The id is assigned by the backend at creation and never changes.
type Order struct {
	ID int64 `json:"id"`

	// Contract descriptors, immutable after creation
	Ticker     string  `json:"ticker"`
	OptionType string  `json:"option_type"` // CALL or PUT
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration"`

	// Editable only while the order is still pending
	Quantity int `json:"quantity"`

	Status Status `json:"status"`

	// Assigned by the remote gateway once submitted; empty while pending
	IBOrderID string `json:"ib_order_id,omitempty"`
	IBStatus  string `json:"ib_status,omitempty"`

	// Populated once the gateway reports execution progress
	AvgFillPrice *float64 `json:"avg_fill_price,omitempty"`
	Commission   float64  `json:"commission"`
	Filled       int      `json:"filled"`
	Remaining    int      `json:"remaining"`

	CreatedAt   Timestamp `json:"created_at"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// CountsAsFilled reports whether the order belongs in filled-order
// aggregates. An order marked executed without a fill price is excluded;
// the flag without the price is not trustworthy.
func (o *Order) CountsAsFilled() bool {
	return o.Status == StatusExecuted && o.AvgFillPrice != nil
}

// Fragment is a canonical partial order record. The gateway boundary
// normalizes the upstream's inconsistent field names into this one shape;
// fields left nil are absent and do not touch the local order on merge.
type Fragment struct {
	ID int64

	Ticker     *string
	OptionType *string
	Strike     *float64
	Expiration *string

	Quantity *int
	Status   *Status

	IBOrderID *string
	IBStatus  *string

	AvgFillPrice *float64
	Commission   *float64
	Filled       *int
	Remaining    *int

	CreatedAt *Timestamp
}

// Apply shallow-merges the fragment's set fields into the order. The remote
// is authoritative for every field it includes, with one guard: once an
// order has left pending, an incoming pending status is ignored so the
// state machine never moves backwards.
func (f *Fragment) Apply(o *Order) {
	if f.Ticker != nil {
		o.Ticker = *f.Ticker
	}
	if f.OptionType != nil {
		o.OptionType = *f.OptionType
	}
	if f.Strike != nil {
		o.Strike = *f.Strike
	}
	if f.Expiration != nil {
		o.Expiration = *f.Expiration
	}
	if f.Quantity != nil {
		o.Quantity = *f.Quantity
	}
	if f.Status != nil {
		if *f.Status != StatusPending || o.Status == StatusPending {
			o.Status = *f.Status
		}
	}
	if f.IBOrderID != nil {
		o.IBOrderID = *f.IBOrderID
	}
	if f.IBStatus != nil {
		o.IBStatus = *f.IBStatus
	}
	if f.AvgFillPrice != nil {
		price := *f.AvgFillPrice
		o.AvgFillPrice = &price
	}
	if f.Commission != nil {
		o.Commission = *f.Commission
	}
	if f.Filled != nil {
		o.Filled = *f.Filled
	}
	if f.Remaining != nil {
		o.Remaining = *f.Remaining
	}
	if f.CreatedAt != nil {
		o.CreatedAt = *f.CreatedAt
	}
}

// ToOrder builds a full order from a fragment, for wholesale loads.
func (f *Fragment) ToOrder() Order {
	o := Order{
		ID:     f.ID,
		Status: StatusPending,
	}
	f.Apply(&o)
	return o
}
