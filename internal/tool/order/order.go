// Package order looks up order statuses in a fixed table.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/turnkit/internal/tool"
)

// Status values used by the sample table.
const (
	StatusShipped    = "Shipped"
	StatusProcessing = "Processing"
	StatusDelivered  = "Delivered"
)

// SampleOrders is the table used by the demo agents.
var SampleOrders = map[string]string{
	"123":   StatusShipped,
	"456":   StatusProcessing,
	"789":   StatusDelivered,
	"12345": StatusShipped,
	"67890": StatusProcessing,
}

// StatusRequest is the argument of get_order_status.
type StatusRequest struct {
	OrderID string `json:"order_id" description:"the order identifier, e.g. 123"`
}

func (r StatusRequest) String() string { return r.OrderID }

// Lookup answers order status queries. It never fails for unknown ids.
type Lookup struct {
	orders map[string]string
}

// NewLookup copies orders into a new Lookup.
func NewLookup(orders map[string]string) *Lookup {
	cp := make(map[string]string, len(orders))
	for id, status := range orders {
		cp[id] = status
	}
	return &Lookup{orders: cp}
}

// Status returns the user-facing status line for id.
func (l *Lookup) Status(id string) string {
	id = strings.TrimSpace(id)
	status, ok := l.orders[id]
	if !ok {
		return fmt.Sprintf("I could not find an order with the ID %s.", id)
	}
	return fmt.Sprintf("Order %s is currently '%s'.", id, status)
}

// Tool returns the get_order_status tool backed by l.
func (l *Lookup) Tool() tool.Tool {
	return tool.NewFunction("get_order_status", "Fetches the status of an order by its ID.",
		func(_ context.Context, req StatusRequest) (string, error) {
			return l.Status(req.OrderID), nil
		})
}

// New returns get_order_status over SampleOrders.
func New() tool.Tool {
	return NewLookup(SampleOrders).Tool()
}
