package cart

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetByUserIDScansLinesAndTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "user_id", "checked_out", "created_at", "updated_at"}).
			AddRow(7, 42, false, now, now))
	mock.ExpectQuery("FROM cart_lines").WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "title", "quantity", "price"}).
			AddRow(1, "Dune", 2, "10.00").
			AddRow(2, "Hyperion", 1, "5.00"))

	c, err := repo.GetByUserID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if c.ID != 7 || len(c.Lines) != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}
	if c.TotalPrice.String() != "25" {
		t.Fatalf("expected derived total 25, got %s", c.TotalPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByUserIDMissingCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "user_id", "checked_out", "created_at", "updated_at"}))

	if _, err := repo.GetByUserID(context.Background(), 42); err != ErrCartNotFound {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestUpdateLineQuantityMissingLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE cart_lines").WithArgs(7, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateLineQuantity(context.Background(), 7, 1, 3); err != ErrItemNotInCart {
		t.Fatalf("expected ErrItemNotInCart, got %v", err)
	}
}

func TestIncrementLineQuantityIsRelative(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// the delta is applied in SQL, so two racing adds both land
	mock.ExpectExec(`SET quantity = quantity \+`).WithArgs(7, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementLineQuantity(context.Background(), 7, 1, 3); err != nil {
		t.Fatalf("IncrementLineQuantity failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIncrementLineQuantityMissingLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`SET quantity = quantity \+`).WithArgs(7, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.IncrementLineQuantity(context.Background(), 7, 1, 3); err != ErrItemNotInCart {
		t.Fatalf("expected ErrItemNotInCart, got %v", err)
	}
}

func TestDeleteLineTouchesCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM cart_lines").WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteLine(context.Background(), 7, 1); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
