package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmind/book-store-backend/internal/store"
)

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func seedOrders() *InMemoryRepository {
	return NewInMemoryRepository([]Order{
		{ID: 1, UserID: 42, Status: StatusPending, TotalAmount: money("25.00")},
		{ID: 2, UserID: 42, Status: StatusShipped, TotalAmount: money("10.00")},
		{ID: 3, UserID: 7, Status: StatusPending, TotalAmount: money("5.00")},
	})
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED"} {
		st, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), st)
	}

	_, err := ParseStatus("IN_TRANSIT")
	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "IN_TRANSIT", invalid.Value)
	assert.Contains(t, invalid.Error(), "IN_TRANSIT")
}

func TestGetIsOwnerScoped(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	got, err := svc.Get(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	// someone else's order reads as missing, not forbidden
	_, err = svc.Get(context.Background(), 42, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWithStatusFilter(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	all, err := svc.List(context.Background(), 42, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(context.Background(), 42, "PENDING")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)

	_, err = svc.List(context.Background(), 42, "bogus")
	var invalid *InvalidStatusError
	assert.ErrorAs(t, err, &invalid)
}

func TestCancelPendingOrder(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	got, err := svc.Cancel(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancelRejectsNonPendingStates(t *testing.T) {
	repo := NewInMemoryRepository([]Order{
		{ID: 1, UserID: 42, Status: StatusConfirmed},
		{ID: 2, UserID: 42, Status: StatusShipped},
		{ID: 3, UserID: 42, Status: StatusDelivered},
		{ID: 4, UserID: 42, Status: StatusCancelled},
	})
	svc := NewService(repo, store.NoTx{})

	for id := 1; id <= 4; id++ {
		_, err := svc.Cancel(context.Background(), 42, id)
		assert.ErrorIs(t, err, ErrInvalidState, "order %d", id)
	}
}

func TestCancelSomeoneElsesOrder(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	_, err := svc.Cancel(context.Background(), 42, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminSetStatusIgnoresTransitionRules(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	// backwards move a customer could never make
	got, err := svc.AdminSetStatus(context.Background(), 2, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	got, err = svc.AdminSetStatus(context.Background(), 2, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)
}

func TestAdminSetStatusValidation(t *testing.T) {
	svc := NewService(seedOrders(), store.NoTx{})

	_, err := svc.AdminSetStatus(context.Background(), 2, "TELEPORTED")
	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TELEPORTED", invalid.Value)

	_, err = svc.AdminSetStatus(context.Background(), 99, "SHIPPED")
	assert.ErrorIs(t, err, ErrNotFound)
}
