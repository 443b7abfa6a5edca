package cart

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotInCart     = errors.New("book not in cart")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrAlreadyCheckedOut = errors.New("cart already checked out")
)

// Repository provides access to cart rows and their lines. Every method
// joins the transaction carried in ctx, if any, so an orchestrated operation
// sees and mutates a single consistent cart.
type Repository interface {
	GetByUserID(ctx context.Context, userID int) (Cart, error)
	Create(ctx context.Context, userID int) (Cart, error)
	InsertLine(ctx context.Context, cartID int, l Line) error
	// IncrementLineQuantity adds delta to the stored quantity atomically,
	// so two concurrent adds both land instead of the last writer winning.
	IncrementLineQuantity(ctx context.Context, cartID, bookID, delta int) error
	UpdateLineQuantity(ctx context.Context, cartID, bookID, quantity int) error
	DeleteLine(ctx context.Context, cartID, bookID int) error
	ClearLines(ctx context.Context, cartID int) error
	SetCheckedOut(ctx context.Context, cartID int, checkedOut bool) error
}

// InMemoryRepository is used for tests and local scenarios. It ignores the
// context transaction and serializes through its own mutex instead.
type InMemoryRepository struct {
	mu     sync.RWMutex
	carts  map[int]*Cart // keyed by cart ID
	byUser map[int]int   // user ID -> cart ID
	nextID int
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{
		carts:  make(map[int]*Cart, len(seed)),
		byUser: make(map[int]int, len(seed)),
		nextID: 1,
	}

	for _, c := range seed {
		cp := c
		r.carts[c.ID] = &cp
		r.byUser[c.UserID] = c.ID
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) GetByUserID(_ context.Context, userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	return r.snapshot(id), nil
}

func (r *InMemoryRepository) Create(_ context.Context, userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byUser[userID]; ok {
		return r.snapshot(id), nil
	}

	now := time.Now().UTC()
	c := &Cart{ID: r.nextID, UserID: userID, Lines: []Line{}, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	r.carts[c.ID] = c
	r.byUser[userID] = c.ID
	return r.snapshot(c.ID), nil
}

func (r *InMemoryRepository) InsertLine(_ context.Context, cartID int, l Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	c.Lines = append(c.Lines, l)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) IncrementLineQuantity(_ context.Context, cartID, bookID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].BookID == bookID {
			c.Lines[i].Quantity += delta
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrItemNotInCart
}

func (r *InMemoryRepository) UpdateLineQuantity(_ context.Context, cartID, bookID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].BookID == bookID {
			c.Lines[i].Quantity = quantity
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrItemNotInCart
}

func (r *InMemoryRepository) DeleteLine(_ context.Context, cartID, bookID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].BookID == bookID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrItemNotInCart
}

func (r *InMemoryRepository) ClearLines(_ context.Context, cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	c.Lines = []Line{}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) SetCheckedOut(_ context.Context, cartID int, checkedOut bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	c.CheckedOut = checkedOut
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// snapshot copies the cart so callers never hold a live pointer into the
// repository. Callers must hold at least the read lock.
func (r *InMemoryRepository) snapshot(id int) Cart {
	c := *r.carts[id]
	c.Lines = make([]Line, len(r.carts[id].Lines))
	copy(c.Lines, r.carts[id].Lines)
	c.Recalculate()
	return c
}
