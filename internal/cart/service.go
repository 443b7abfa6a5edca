package cart

import (
	"context"
	"database/sql"
	"log"

	"github.com/bookmind/book-store-backend/internal/book"
	"github.com/bookmind/book-store-backend/internal/store"
	"github.com/bookmind/book-store-backend/internal/user"
)

// Service orchestrates cart operations. Each public method runs its
// read-modify-write sequence inside exactly one transaction so concurrent
// calls against the same cart serialize instead of interleaving.
type Service struct {
	repo  Repository
	books book.Lookup
	users user.Directory
	tx    store.TxManager
}

func NewService(repo Repository, books book.Lookup, users user.Directory, tx store.TxManager) *Service {
	return &Service{repo: repo, books: books, users: users, tx: tx}
}

var writeTxOpts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// Get returns the user's cart with its derived total.
func (s *Service) Get(ctx context.Context, userID int) (Cart, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// AddItem resolves the book, snapshots its current price into a new line or
// bumps the quantity of an existing one, and returns the updated cart. The
// user's cart is created on first add.
func (s *Service) AddItem(ctx context.Context, userID, bookID, quantity int) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	var out Cart
	err := s.tx.InTx(ctx, writeTxOpts, func(ctx context.Context) error {
		c, err := s.getOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		b, err := s.books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}

		if c.ContainsBook(bookID) {
			// price stays at the original snapshot; the increment is
			// applied by the store so concurrent adds cannot lose it
			err = s.repo.IncrementLineQuantity(ctx, c.ID, bookID, quantity)
		} else {
			err = s.repo.InsertLine(ctx, c.ID, Line{
				BookID:   b.ID,
				Title:    b.Title,
				Quantity: quantity,
				Price:    b.Price,
			})
		}
		if err != nil {
			return err
		}

		out, err = s.repo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}

	log.Printf("cart: added book %d (qty %d) for user %d", bookID, quantity, userID)
	return out, nil
}

// UpdateItemQuantity replaces the quantity of an existing line. The snapshot
// price is untouched.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, bookID, quantity int) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	var out Cart
	err := s.tx.InTx(ctx, writeTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateLineQuantity(ctx, c.ID, bookID, quantity); err != nil {
			return err
		}
		out, err = s.repo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// RemoveItem deletes the line for the given book.
func (s *Service) RemoveItem(ctx context.Context, userID, bookID int) (Cart, error) {
	var out Cart
	err := s.tx.InTx(ctx, writeTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteLine(ctx, c.ID, bookID); err != nil {
			return err
		}
		out, err = s.repo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// Clear removes every line; the total drops to zero.
func (s *Service) Clear(ctx context.Context, userID int) (Cart, error) {
	var out Cart
	err := s.tx.InTx(ctx, writeTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.repo.ClearLines(ctx, c.ID); err != nil {
			return err
		}
		out, err = s.repo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// getOrCreate returns the user's cart, creating one on first use. A cart
// left checked out by the previous checkout starts a new order cycle here:
// the flag is reset before any line is inserted, so a checked-out cart is
// always empty.
func (s *Service) getOrCreate(ctx context.Context, userID int) (Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		if c.CheckedOut {
			if err := s.repo.SetCheckedOut(ctx, c.ID, false); err != nil {
				return Cart{}, err
			}
			c.CheckedOut = false
		}
		return c, nil
	}
	if err != ErrCartNotFound {
		return Cart{}, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	if !exists {
		return Cart{}, user.ErrNotFound
	}

	log.Printf("cart: creating cart for user %d", userID)
	return s.repo.Create(ctx, userID)
}
