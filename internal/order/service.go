package order

import (
	"context"
	"database/sql"
	"log"

	"github.com/bookmind/book-store-backend/internal/store"
)

// Service provides read access and status transitions for orders. Order
// creation happens in the checkout orchestrator, never here.
type Service struct {
	repo Repository
	tx   store.TxManager
}

func NewService(repo Repository, tx store.TxManager) *Service {
	return &Service{repo: repo, tx: tx}
}

// Get returns an order owned by the given user.
func (s *Service) Get(ctx context.Context, userID, orderID int) (Order, error) {
	return s.repo.GetByUserAndID(ctx, userID, orderID)
}

// List returns the user's orders, optionally filtered by status. The filter
// string is validated before any store access.
func (s *Service) List(ctx context.Context, userID int, statusFilter string) ([]Order, error) {
	var status *Status
	if statusFilter != "" {
		st, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = &st
	}
	return s.repo.ListByUser(ctx, userID, status)
}

// Cancel moves a PENDING order owned by the caller to CANCELLED. Any other
// state fails ErrInvalidState. The read-then-decide sequence runs under
// repeatable read so a concurrent status change cannot invalidate the
// decision mid-transaction.
func (s *Service) Cancel(ctx context.Context, userID, orderID int) (Order, error) {
	var out Order
	err := s.tx.InTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(ctx context.Context) error {
		o, err := s.repo.GetByUserAndID(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return ErrInvalidState
		}
		if err := s.repo.UpdateStatus(ctx, orderID, StatusCancelled); err != nil {
			return err
		}
		out, err = s.repo.GetByUserAndID(ctx, userID, orderID)
		return err
	})
	if err != nil {
		return Order{}, err
	}

	log.Printf("order: cancelled order %d for user %d", orderID, userID)
	return out, nil
}

// AdminSetStatus sets any recognized status on any order. This is the
// administrative override; it deliberately enforces no forward-only
// transition rule.
func (s *Service) AdminSetStatus(ctx context.Context, orderID int, statusValue string) (Order, error) {
	status, err := ParseStatus(statusValue)
	if err != nil {
		return Order{}, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return Order{}, err
	}

	log.Printf("order: admin set order %d status to %s", orderID, status)
	return s.repo.GetByID(ctx, orderID)
}
