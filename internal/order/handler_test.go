package order

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/bookmind/book-store-backend/internal/store"
)

func makeOrderApp(repo *InMemoryRepository) *fiber.App {
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
	NewHandler(NewService(repo, store.NoTx{})).RegisterProtectedRoutes(app)
	return app
}

func TestListOrdersRoute(t *testing.T) {
	app := makeOrderApp(seedOrders())

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("X-User-ID", "42")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
}

func TestListOrdersStatusFilterRoute(t *testing.T) {
	app := makeOrderApp(seedOrders())

	req := httptest.NewRequest("GET", "/api/v1/orders?status=SHIPPED", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != StatusShipped {
		t.Fatalf("unexpected filter result: %+v", orders)
	}

	req = httptest.NewRequest("GET", "/api/v1/orders?status=WRONG", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", res.StatusCode)
	}
}

func TestGetOrderRouteIsOwnerScoped(t *testing.T) {
	app := makeOrderApp(seedOrders())

	req := httptest.NewRequest("GET", "/api/v1/orders/3", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", res.StatusCode)
	}
}

func TestCancelOrderRoute(t *testing.T) {
	app := makeOrderApp(seedOrders())

	req := httptest.NewRequest("PUT", "/api/v1/orders/1/cancel", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 cancelling pending order, got %d", res.StatusCode)
	}

	var o Order
	if err := json.NewDecoder(res.Body).Decode(&o); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if o.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", o.Status)
	}

	// shipped orders cannot be cancelled by the customer
	req = httptest.NewRequest("PUT", "/api/v1/orders/2/cancel", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 cancelling shipped order, got %d", res.StatusCode)
	}
}

func TestAdminStatusRoute(t *testing.T) {
	app := makeOrderApp(seedOrders())

	req := httptest.NewRequest("PUT", "/api/v1/admin/orders/2/status", strings.NewReader(`{"status":"DELIVERED"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PUT", "/api/v1/admin/orders/2/status", strings.NewReader(`{"status":"LOST"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", res.StatusCode)
	}
}
