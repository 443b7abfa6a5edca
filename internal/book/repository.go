package book

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("book not found")
)

// Lookup is the narrow read contract the cart and collection services depend
// on. The full Repository below adds the write side used by the catalog
// endpoints.
type Lookup interface {
	GetByID(ctx context.Context, id int) (Book, error)
}

type Repository interface {
	Lookup
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, b Book) (Book, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests
// and seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Book
	nextID  int
}

func NewInMemoryRepository(seed []Book) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Book, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, b := range seed {
		r.storage = append(r.storage, b)
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.storage {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (r *InMemoryRepository) List(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Book, len(r.storage))
	copy(out, r.storage)
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, b Book) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, b)
	return b, nil
}
