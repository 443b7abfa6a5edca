package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookmind/book-store-backend/internal/book"
)

// Line is one (book, quantity, snapshot price) tuple in a cart. The price is
// captured when the book is first added and never re-read from the catalog;
// quantity changes leave it untouched.
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

// Cart is a user's active cart. Each user has at most one, created lazily on
// first add and reused forever; checkout empties the lines and flips
// CheckedOut, it never deletes the row. The next add resets the flag and
// starts a new order cycle, so a checked-out cart is always empty.
type Cart struct {
	ID         int             `json:"cartId"`
	UserID     int             `json:"userId"`
	Lines      []Line          `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CheckedOut bool            `json:"checkedOut"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Recalculate recomputes TotalPrice from the lines. The total is derived,
// never patched incrementally, so it cannot drift from the line set.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	c.TotalPrice = total
}

var _ book.MembershipSet = (*Cart)(nil)

// ContainsBook reports whether a line for the given book exists.
func (c *Cart) ContainsBook(bookID int) bool {
	return c.lineIndex(bookID) >= 0
}

// Members returns the book references currently in the cart, in line order.
func (c *Cart) Members() []int {
	ids := make([]int, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.BookID)
	}
	return ids
}

// Line returns the line for the given book, if any.
func (c *Cart) Line(bookID int) (Line, bool) {
	if i := c.lineIndex(bookID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c *Cart) lineIndex(bookID int) int {
	for i, l := range c.Lines {
		if l.BookID == bookID {
			return i
		}
	}
	return -1
}
