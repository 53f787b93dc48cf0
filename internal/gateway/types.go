package gateway

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mhenders/ibdash/internal/orders"
)

// The upstream trading backend is not consistent about field names or
// scalar types (numeric ids arrive as strings, option types under three
// different keys, and so on). All of that tolerance lives here: raw wire
// records are normalized into orders.Fragment in one step and nothing past
// this package ever probes alternate field names.

// ordersEnvelope is the response shape of the order listing endpoint.
type ordersEnvelope struct {
	Orders []json.RawMessage `json:"orders"`
}

// statusEnvelope is the response shape of the status-check endpoint.
type statusEnvelope struct {
	Success       bool              `json:"success"`
	Error         string            `json:"error"`
	UpdatedOrders []json.RawMessage `json:"updated_orders"`
}

// ExecutionDetails carries the gateway's execution progress report.
type ExecutionDetails struct {
	IBOrderID    string   `json:"ib_order_id"`
	IBStatus     string   `json:"ib_status"`
	Filled       int      `json:"filled"`
	Remaining    int      `json:"remaining"`
	AvgFillPrice *float64 `json:"avg_fill_price"`
}

// ExecuteResult is the gateway's response to an execute request.
type ExecuteResult struct {
	IBOrderID        string            `json:"ib_order_id"`
	ExecutionDetails *ExecutionDetails `json:"execution_details"`
}

// CancelResult is the gateway's response to a cancel request.
type CancelResult struct {
	IBStatus string `json:"ib_status"`
}

// normalizeFragment converts one raw wire order record into the canonical
// fragment form.
func normalizeFragment(raw json.RawMessage) (orders.Fragment, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return orders.Fragment{}, err
	}

	frag := orders.Fragment{
		ID:         pickID(m, "id", "order_id", "orderId"),
		Ticker:     pickString(m, "ticker", "symbol"),
		OptionType: pickString(m, "option_type", "optionType", "type"),
		Strike:     pickFloat(m, "strike", "strike_price"),
		Expiration: pickString(m, "expiration", "expiry"),
		Quantity:   pickInt(m, "quantity", "qty"),
		IBOrderID:  pickString(m, "ib_order_id", "ibOrderId"),
		IBStatus:   pickString(m, "ib_status", "ibStatus"),
		Commission: pickFloat(m, "commission"),
		Filled:     pickInt(m, "filled", "filled_quantity"),
		Remaining:  pickInt(m, "remaining", "remaining_quantity"),
	}

	if s := pickString(m, "status"); s != nil {
		status := orders.Status(strings.ToLower(*s))
		frag.Status = &status
	}

	// avg_fill_price may legitimately be null; only a present non-null
	// value becomes part of the fragment.
	frag.AvgFillPrice = pickFloat(m, "avg_fill_price", "avgFillPrice", "fill_price")

	for _, key := range []string{"timestamp", "created_at", "createdAt"} {
		if v, ok := m[key]; ok && v != nil {
			ts := orders.ParseTimestamp(v)
			frag.CreatedAt = &ts
			break
		}
	}

	return frag, nil
}

func normalizeFragments(raws []json.RawMessage, out *[]orders.Fragment) error {
	for _, raw := range raws {
		frag, err := normalizeFragment(raw)
		if err != nil {
			return err
		}
		*out = append(*out, frag)
	}
	return nil
}

// pickID resolves the order identifier, accepting numeric and string forms.
func pickID(m map[string]interface{}, keys ...string) int64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case json.Number:
			if n, err := val.Int64(); err == nil {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickString(m map[string]interface{}, keys ...string) *string {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				return &s
			}
		}
	}
	return nil
}

func pickFloat(m map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case json.Number:
			if f, err := val.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func pickInt(m map[string]interface{}, keys ...string) *int {
	if f := pickFloat(m, keys...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}
