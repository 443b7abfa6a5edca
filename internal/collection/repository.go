package collection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound         = errors.New("collection not found")
	ErrAlreadyExists    = errors.New("collection with this name already exists")
	ErrBookInCollection = errors.New("book already in collection")
	ErrBookNotInList    = errors.New("book not in collection")
	ErrInvalidBookCount = errors.New("bulk operations accept between 1 and 50 book ids")
)

// Repository provides access to collections and their memberships. Methods
// join the transaction carried in ctx, if any. AddBooks/RemoveBooks apply a
// whole validated batch in one statement so a bulk call commits its
// successful subset atomically.
type Repository interface {
	GetByUserAndID(ctx context.Context, userID, collectionID int) (Collection, error)
	ListByUser(ctx context.Context, userID int) ([]Collection, error)
	Create(ctx context.Context, userID int, name string) (Collection, error)
	Rename(ctx context.Context, collectionID int, name string) error
	Delete(ctx context.Context, collectionID int) error
	AddBooks(ctx context.Context, collectionID int, bookIDs []int) error
	RemoveBooks(ctx context.Context, collectionID int, bookIDs []int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu          sync.RWMutex
	collections map[int]*Collection
	nextID      int
}

func NewInMemoryRepository(seed []Collection) *InMemoryRepository {
	r := &InMemoryRepository{
		collections: make(map[int]*Collection, len(seed)),
		nextID:      1,
	}
	for _, c := range seed {
		cp := c
		r.collections[c.ID] = &cp
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, collectionID int) (Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[collectionID]
	if !ok || c.UserID != userID {
		return Collection{}, ErrNotFound
	}
	return r.snapshot(c), nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int) ([]Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Collection, 0)
	for id := 1; id < r.nextID; id++ {
		if c, ok := r.collections[id]; ok && c.UserID == userID {
			out = append(out, r.snapshot(c))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, userID int, name string) (Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.collections {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return Collection{}, ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	c := &Collection{ID: r.nextID, UserID: userID, Name: name, BookIDs: []int{}, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	r.collections[c.ID] = c
	return r.snapshot(c), nil
}

func (r *InMemoryRepository) Rename(_ context.Context, collectionID int, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collectionID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range r.collections {
		if other.ID != collectionID && other.UserID == c.UserID && strings.EqualFold(other.Name, name) {
			return ErrAlreadyExists
		}
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, collectionID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[collectionID]; !ok {
		return ErrNotFound
	}
	delete(r.collections, collectionID)
	return nil
}

func (r *InMemoryRepository) AddBooks(_ context.Context, collectionID int, bookIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collectionID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range bookIDs {
		if !c.ContainsBook(id) {
			c.BookIDs = append(c.BookIDs, id)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) RemoveBooks(_ context.Context, collectionID int, bookIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collectionID]
	if !ok {
		return ErrNotFound
	}

	drop := make(map[int]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		drop[id] = struct{}{}
	}

	kept := make([]int, 0, len(c.BookIDs))
	for _, id := range c.BookIDs {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	c.BookIDs = kept
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) snapshot(c *Collection) Collection {
	out := *c
	out.BookIDs = make([]int, len(c.BookIDs))
	copy(out.BookIDs, c.BookIDs)
	return out
}
