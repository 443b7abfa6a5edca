package cart

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"

	"github.com/bookmind/book-store-backend/internal/book"
	"github.com/bookmind/book-store-backend/internal/store"
	"github.com/bookmind/book-store-backend/internal/user"
)

// makeAppWithCartHandler installs a middleware that turns the X-User-ID
// header into JWT claims so tests can act as any user without signing
// tokens.
func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func makeCartApp() *fiber.App {
	books := book.NewInMemoryRepository([]book.Book{
		{ID: 1, Title: "Dune", Price: decimal.RequireFromString("10.00"), Available: true},
	})
	users := user.NewService(user.NewInMemoryRepository([]user.User{{ID: 42, Email: "reader@example.com"}}))
	svc := NewService(NewInMemoryRepository(nil), books, users, store.NoTx{})
	return makeAppWithCartHandler(NewHandler(svc))
}

func TestCartRoutesRequireAuth(t *testing.T) {
	app := makeCartApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"bookId":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated POST, got %d", res.StatusCode)
	}
}

func TestAddItemRoute(t *testing.T) {
	app := makeCartApp()

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"bookId":1,"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var c Cart
	if err := json.NewDecoder(res.Body).Decode(&c); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart lines: %+v", c.Lines)
	}
	if !c.TotalPrice.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected total %s", c.TotalPrice)
	}
}

func TestAddItemRouteUnknownBook(t *testing.T) {
	app := makeCartApp()

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"bookId":99}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")

	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown book, got %d", res.StatusCode)
	}
}

func TestUpdateAndRemoveItemRoutes(t *testing.T) {
	books := book.NewInMemoryRepository([]book.Book{
		{ID: 1, Title: "Dune", Price: decimal.RequireFromString("10.00"), Available: true},
	})
	users := user.NewService(user.NewInMemoryRepository([]user.User{{ID: 42}}))
	svc := NewService(NewInMemoryRepository(nil), books, users, store.NoTx{})
	app := makeAppWithCartHandler(NewHandler(svc))

	if _, err := svc.AddItem(context.Background(), 42, 1, 1); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	req := httptest.NewRequest("PUT", "/api/v1/cart/items/1", strings.NewReader(`{"quantity":4}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 updating quantity, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cart/items/1", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 removing item, got %d", res.StatusCode)
	}

	// removing again reports the missing line
	req = httptest.NewRequest("DELETE", "/api/v1/cart/items/1", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 removing absent item, got %d", res.StatusCode)
	}
}

func TestInvalidQuantityRoute(t *testing.T) {
	app := makeCartApp()

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"bookId":1,"quantity":-2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")

	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity, got %d", res.StatusCode)
	}
}
