package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookmind/book-store-backend/internal/cart"
	"github.com/bookmind/book-store-backend/internal/user"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/cart/checkout", h.checkout)
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ShippingAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shippingAddress is required"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	conf, err := h.service.Checkout(c.Context(), userID, payload.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrCartNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart not found"})
		case errors.Is(err, cart.ErrCartEmpty):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
		case errors.Is(err, cart.ErrAlreadyCheckedOut):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "cart already checked out"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(conf)
}
