package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Regular flow is
// PENDING -> CONFIRMED -> SHIPPED -> DELIVERED; a PENDING order may instead
// be CANCELLED. Admin updates may set any recognized status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var allStatuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// InvalidStatusError reports an unrecognized status value, echoing the
// offending input back to the caller.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q, valid values are %v", e.Value, allStatuses)
}

// ParseStatus validates a status string against the recognized set.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &InvalidStatusError{Value: s}
}

// Line is an immutable copy of a cart line taken at checkout time. The price
// is the cart's snapshot, not a fresh catalog read, so the order stays a
// faithful historical record through later price changes.
type Line struct {
	BookID   int             `json:"bookId"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns price x quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the immutable result of a checkout. Lines and TotalAmount never
// change after creation; only Status moves.
type Order struct {
	ID              int             `json:"orderId"`
	UserID          int             `json:"userId"`
	Lines           []Line          `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
