package collection

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/bookmind/book-store-backend/internal/book"
	"github.com/bookmind/book-store-backend/internal/store"
)

const (
	// Bulk calls accept at most this many book ids per request.
	maxBulkBooks = 50

	// A bulk mutation is abandoned if it cannot finish within this window;
	// items not yet processed are reported as FAILED.
	bulkTimeout = 60 * time.Second
)

var ErrEmptyName = errors.New("collection name must not be empty")

var (
	bulkTxOpts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

	// rename and delete read the row before deciding, so they run under
	// repeatable read.
	rmwTxOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
)

type Service struct {
	repo  Repository
	books book.Lookup
	tx    store.TxManager
}

func NewService(repo Repository, books book.Lookup, tx store.TxManager) *Service {
	return &Service{repo: repo, books: books, tx: tx}
}

func (s *Service) Get(ctx context.Context, userID, collectionID int) (Collection, error) {
	return s.repo.GetByUserAndID(ctx, userID, collectionID)
}

func (s *Service) List(ctx context.Context, userID int) ([]Collection, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID int, name string) (Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Collection{}, ErrEmptyName
	}
	return s.repo.Create(ctx, userID, name)
}

func (s *Service) Rename(ctx context.Context, userID, collectionID int, name string) (Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Collection{}, ErrEmptyName
	}

	var out Collection
	err := s.tx.InTx(ctx, rmwTxOpts, func(ctx context.Context) error {
		if _, err := s.repo.GetByUserAndID(ctx, userID, collectionID); err != nil {
			return err
		}
		if err := s.repo.Rename(ctx, collectionID, name); err != nil {
			return err
		}
		var err error
		out, err = s.repo.GetByUserAndID(ctx, userID, collectionID)
		return err
	})
	return out, err
}

func (s *Service) Delete(ctx context.Context, userID, collectionID int) error {
	return s.tx.InTx(ctx, rmwTxOpts, func(ctx context.Context) error {
		if _, err := s.repo.GetByUserAndID(ctx, userID, collectionID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, collectionID)
	})
}

// AddBook adds a single book, failing loudly where the bulk path would
// record a SKIPPED detail.
func (s *Service) AddBook(ctx context.Context, userID, collectionID, bookID int) (Collection, error) {
	var out Collection
	err := s.tx.InTx(ctx, bulkTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserAndID(ctx, userID, collectionID)
		if err != nil {
			return err
		}
		if _, err := s.books.GetByID(ctx, bookID); err != nil {
			return err
		}
		if c.ContainsBook(bookID) {
			return ErrBookInCollection
		}
		if err := s.repo.AddBooks(ctx, collectionID, []int{bookID}); err != nil {
			return err
		}
		out, err = s.repo.GetByUserAndID(ctx, userID, collectionID)
		return err
	})
	return out, err
}

func (s *Service) RemoveBook(ctx context.Context, userID, collectionID, bookID int) (Collection, error) {
	var out Collection
	err := s.tx.InTx(ctx, bulkTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserAndID(ctx, userID, collectionID)
		if err != nil {
			return err
		}
		if !c.ContainsBook(bookID) {
			return ErrBookNotInList
		}
		if err := s.repo.RemoveBooks(ctx, collectionID, []int{bookID}); err != nil {
			return err
		}
		out, err = s.repo.GetByUserAndID(ctx, userID, collectionID)
		return err
	})
	return out, err
}

// BulkAdd adds up to maxBulkBooks books in one call. Each id is resolved
// independently: unknown books FAIL, existing members are SKIPPED, the rest
// SUCCEED and are persisted together. A failure never aborts the batch.
func (s *Service) BulkAdd(ctx context.Context, userID, collectionID int, bookIDs []int) (BulkResult, error) {
	return s.bulk(ctx, userID, collectionID, bookIDs, true)
}

// BulkRemove is the inverse of BulkAdd: ids not currently in the collection
// are SKIPPED rather than failing the batch.
func (s *Service) BulkRemove(ctx context.Context, userID, collectionID int, bookIDs []int) (BulkResult, error) {
	return s.bulk(ctx, userID, collectionID, bookIDs, false)
}

func (s *Service) bulk(ctx context.Context, userID, collectionID int, bookIDs []int, add bool) (BulkResult, error) {
	if len(bookIDs) == 0 || len(bookIDs) > maxBulkBooks {
		return BulkResult{}, ErrInvalidBookCount
	}

	ctx, cancel := context.WithTimeout(ctx, bulkTimeout)
	defer cancel()

	res := BulkResult{
		Requested: len(bookIDs),
		Details:   make([]BulkDetail, 0, len(bookIDs)),
	}

	err := s.tx.InTx(ctx, bulkTxOpts, func(ctx context.Context) error {
		c, err := s.repo.GetByUserAndID(ctx, userID, collectionID)
		if err != nil {
			return err
		}

		apply := make([]int, 0, len(bookIDs))
		// Membership as it will look after the pending mutations, so a
		// duplicate id within one batch is skipped, not applied twice.
		member := make(map[int]bool, len(c.BookIDs))
		for _, id := range c.BookIDs {
			member[id] = true
		}

		for _, id := range bookIDs {
			if ctx.Err() != nil {
				res.Failed++
				res.Details = append(res.Details, BulkDetail{
					BookID: id,
					Status: BulkFailed,
					Reason: "Operation cancelled",
				})
				continue
			}

			d := BulkDetail{BookID: id}
			b, err := s.books.GetByID(ctx, id)
			switch {
			case errors.Is(err, book.ErrNotFound):
				d.Status = BulkFailed
				d.Reason = "Book not found"
				d.BookTitle = "Unknown Book"
			case err != nil:
				d.Status = BulkFailed
				d.Reason = "Book lookup failed"
				log.Printf("collection: bulk lookup of book %d: %v", id, err)
			default:
				d.BookTitle = b.Title
				switch {
				case add && member[id]:
					d.Status = BulkSkipped
					d.Reason = "Book already in collection"
				case !add && !member[id]:
					d.Status = BulkSkipped
					d.Reason = "Book not in collection"
				default:
					d.Status = BulkSuccess
					if add {
						d.Reason = "Book added successfully"
					} else {
						d.Reason = "Book removed successfully"
					}
					apply = append(apply, id)
					member[id] = add
				}
			}

			switch d.Status {
			case BulkSuccess:
				res.Succeeded++
			case BulkSkipped:
				res.Skipped++
			default:
				res.Failed++
			}
			res.Details = append(res.Details, d)
		}

		// An expired deadline must not persist half a batch; bail out and
		// let the caller downgrade the uncommitted successes.
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Succeeded == 0 {
			return nil
		}
		if add {
			return s.repo.AddBooks(ctx, collectionID, apply)
		}
		return s.repo.RemoveBooks(ctx, collectionID, apply)
	})
	if err != nil {
		if ctx.Err() == nil || len(res.Details) == 0 {
			return BulkResult{}, err
		}
		// The deadline hit after outcomes were decided but before they were
		// committed. The per-item report still stands, with the rolled-back
		// successes reported as failures.
		for i := range res.Details {
			if res.Details[i].Status == BulkSuccess {
				res.Details[i].Status = BulkFailed
				res.Details[i].Reason = "Operation cancelled"
				res.Succeeded--
				res.Failed++
			}
		}
	}

	if add {
		res.finish("added")
	} else {
		res.finish("removed")
	}
	return res, nil
}
