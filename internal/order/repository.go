package order

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidState = errors.New("order is not in a state that allows this operation")
)

// Repository provides access to order rows and their immutable lines.
// Methods join the transaction carried in ctx, if any.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	GetByUserAndID(ctx context.Context, userID, orderID int) (Order, error)
	GetByID(ctx context.Context, orderID int) (Order, error)
	ListByUser(ctx context.Context, userID int, status *Status) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID int, status Status) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[int]Order
	nextID int
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{
		orders: make(map[int]Order, len(seed)),
		nextID: 1,
	}
	for _, o := range seed {
		r.orders[o.ID] = o
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = o
	return r.copyOf(o), nil
}

func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, orderID int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return r.copyOf(o), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, orderID int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return r.copyOf(o), nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int, status *Status) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for id := 1; id < r.nextID; id++ {
		o, ok := r.orders[id]
		if !ok || o.UserID != userID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, r.copyOf(o))
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, orderID int, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = o
	return nil
}

func (r *InMemoryRepository) copyOf(o Order) Order {
	lines := make([]Line, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}
