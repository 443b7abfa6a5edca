package checkout

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookmind/book-store-backend/internal/cart"
	"github.com/bookmind/book-store-backend/internal/order"
	"github.com/bookmind/book-store-backend/internal/store"
)

// deliveryLeadDays is the business rule for the estimated delivery date:
// order date plus seven days.
const deliveryLeadDays = 7

// Confirmation is returned to the caller after a successful checkout.
type Confirmation struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message"`
	OrderID           int             `json:"orderId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	EstimatedDelivery time.Time       `json:"estimatedDeliveryDate"`
}

// Service converts a cart into an immutable order. The whole sequence (load
// cart, validate, create order, clear cart) runs in one transaction: a
// failure at any step leaves the cart exactly as it was and creates no
// order.
type Service struct {
	carts  cart.Repository
	orders order.Repository
	tx     store.TxManager
}

func NewService(carts cart.Repository, orders order.Repository, tx store.TxManager) *Service {
	return &Service{carts: carts, orders: orders, tx: tx}
}

// Checkout places an order from the user's cart. A successful checkout marks
// the cart checked out and empties its lines, so checking out again before
// anything is added fails cart.ErrAlreadyCheckedOut. The next add to the cart
// resets the flag and starts a new order cycle.
func (s *Service) Checkout(ctx context.Context, userID int, shippingAddress string) (Confirmation, error) {
	var out Confirmation

	err := s.tx.InTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context) error {
		c, err := s.carts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if c.CheckedOut {
			return cart.ErrAlreadyCheckedOut
		}
		if len(c.Lines) == 0 {
			return cart.ErrCartEmpty
		}

		lines := make([]order.Line, 0, len(c.Lines))
		total := decimal.Zero
		for _, l := range c.Lines {
			lines = append(lines, order.Line{
				BookID:   l.BookID,
				Title:    l.Title,
				Quantity: l.Quantity,
				Price:    l.Price, // cart's snapshot, not a fresh catalog read
			})
			total = total.Add(l.Subtotal())
		}

		created, err := s.orders.Create(ctx, order.Order{
			UserID:          userID,
			Lines:           lines,
			TotalAmount:     total,
			Status:          order.StatusPending,
			ShippingAddress: shippingAddress,
		})
		if err != nil {
			return err
		}

		if err := s.carts.SetCheckedOut(ctx, c.ID, true); err != nil {
			return err
		}
		if err := s.carts.ClearLines(ctx, c.ID); err != nil {
			return err
		}

		out = Confirmation{
			Success:           true,
			Message:           "Checkout successful! Your order has been placed.",
			OrderID:           created.ID,
			TotalAmount:       created.TotalAmount,
			EstimatedDelivery: created.CreatedAt.AddDate(0, 0, deliveryLeadDays),
		}
		return nil
	})
	if err != nil {
		return Confirmation{}, err
	}

	log.Printf("checkout: created order %d for user %d (total %s)", out.OrderID, userID, out.TotalAmount)
	return out, nil
}
