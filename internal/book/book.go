package book

import "github.com/shopspring/decimal"

// Book represents a catalog entry and maps to the `books` table. Prices are
// decimal so cart and order totals never accumulate binary rounding drift.
type Book struct {
	ID        int             `json:"bookId"`
	Title     string          `json:"title"`
	Author    string          `json:"author,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// MembershipSet is the shared capability of the aggregates that hold a
// de-duplicated set of book references (cart lines keyed by book, collection
// members). Implementations own their storage; there is no shared base state.
type MembershipSet interface {
	ContainsBook(bookID int) bool
	Members() []int
}
