package collection

import (
	"time"

	"github.com/bookmind/book-store-backend/internal/book"
)

// Collection is a named, de-duplicated set of book references owned by a
// user (a wishlist). Names are unique per owner, case-insensitively.
type Collection struct {
	ID        int       `json:"collectionId"`
	UserID    int       `json:"userId"`
	Name      string    `json:"name"`
	BookIDs   []int     `json:"bookIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var _ book.MembershipSet = (*Collection)(nil)

// ContainsBook reports whether the book is a member.
func (c *Collection) ContainsBook(bookID int) bool {
	for _, id := range c.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}

// Members satisfies the shared membership capability alongside the cart.
func (c *Collection) Members() []int {
	out := make([]int, len(c.BookIDs))
	copy(out, c.BookIDs)
	return out
}
