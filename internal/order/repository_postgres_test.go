package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestCreateInsertsOrderAndLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(42, StatusPending, money("25.00"), "221B Baker Street").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).AddRow(9, now, now))
	mock.ExpectExec("INSERT INTO order_lines").
		WillReturnResult(sqlmock.NewResult(0, 2))

	created, err := repo.Create(context.Background(), Order{
		UserID:          42,
		TotalAmount:     money("25.00"),
		ShippingAddress: "221B Baker Street",
		Lines: []Line{
			{BookID: 1, Title: "Dune", Quantity: 2, Price: money("10.00")},
			{BookID: 2, Title: "Hyperion", Quantity: 1, Price: money("5.00")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != 9 || created.Status != StatusPending {
		t.Fatalf("unexpected order: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByUserAndIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders").WithArgs(42, 9).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "status", "total_amount", "shipping_address", "created_at", "updated_at"}))

	if _, err := repo.GetByUserAndID(context.Background(), 42, 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByUserWithAndWithoutFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	orderRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"order_id", "user_id", "status", "total_amount", "shipping_address", "created_at", "updated_at"}).
			AddRow(9, 42, "PENDING", "25.00", "somewhere", now, now)
	}
	lineRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"book_id", "title", "quantity", "price"}).
			AddRow(1, "Dune", 2, "10.00")
	}

	mock.ExpectQuery("FROM orders").WithArgs(42, nil).WillReturnRows(orderRows())
	mock.ExpectQuery("FROM order_lines").WithArgs(9).WillReturnRows(lineRows())

	all, err := repo.ListByUser(context.Background(), 42, nil)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 1 || len(all[0].Lines) != 1 {
		t.Fatalf("unexpected orders: %+v", all)
	}
	if !all[0].TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("unexpected total %s", all[0].TotalAmount)
	}

	pending := StatusPending
	mock.ExpectQuery("FROM orders").WithArgs(42, "PENDING").WillReturnRows(orderRows())
	mock.ExpectQuery("FROM order_lines").WithArgs(9).WillReturnRows(lineRows())

	filtered, err := repo.ListByUser(context.Background(), 42, &pending)
	if err != nil {
		t.Fatalf("filtered ListByUser failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected 1 order, got %d", len(filtered))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders").WithArgs(99, StatusShipped).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateStatus(context.Background(), 99, StatusShipped); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
