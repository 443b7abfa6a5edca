package collection

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookmind/book-store-backend/internal/book"
	"github.com/bookmind/book-store-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/collections", h.listCollections)
	app.Post("/api/v1/collections", h.createCollection)
	app.Get("/api/v1/collections/:id<[0-9]+>", h.getCollection)
	app.Put("/api/v1/collections/:id<[0-9]+>", h.renameCollection)
	app.Delete("/api/v1/collections/:id<[0-9]+>", h.deleteCollection)
	app.Post("/api/v1/collections/:id<[0-9]+>/books/bulk-add", h.bulkAdd)
	app.Post("/api/v1/collections/:id<[0-9]+>/books/bulk-remove", h.bulkRemove)
	app.Post("/api/v1/collections/:id<[0-9]+>/books/:bookId<[0-9]+>", h.addBook)
	app.Delete("/api/v1/collections/:id<[0-9]+>/books/:bookId<[0-9]+>", h.removeBook)
}

type nameRequest struct {
	Name string `json:"name"`
}

type bulkRequest struct {
	BookIDs []int `json:"bookIds"`
}

func (h *Handler) listCollections(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	cols, err := h.service.List(c.Context(), userID)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(cols)
}

func (h *Handler) getCollection(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	col, err := h.service.Get(c.Context(), userID, id)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(col)
}

func (h *Handler) createCollection(c *fiber.Ctx) error {
	payload := new(nameRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	col, err := h.service.Create(c.Context(), userID, payload.Name)
	if err != nil {
		return collectionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(col)
}

func (h *Handler) renameCollection(c *fiber.Ctx) error {
	payload := new(nameRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	col, err := h.service.Rename(c.Context(), userID, id, payload.Name)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(col)
}

func (h *Handler) deleteCollection(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	if err := h.service.Delete(c.Context(), userID, id); err != nil {
		return collectionError(c, err)
	}
	return c.JSON(fiber.Map{"message": "collection deleted"})
}

func (h *Handler) addBook(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	bookID, _ := strconv.Atoi(c.Params("bookId"))

	col, err := h.service.AddBook(c.Context(), userID, id, bookID)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(col)
}

func (h *Handler) removeBook(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	bookID, _ := strconv.Atoi(c.Params("bookId"))

	col, err := h.service.RemoveBook(c.Context(), userID, id, bookID)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(col)
}

func (h *Handler) bulkAdd(c *fiber.Ctx) error {
	return h.bulk(c, h.service.BulkAdd)
}

func (h *Handler) bulkRemove(c *fiber.Ctx) error {
	return h.bulk(c, h.service.BulkRemove)
}

func (h *Handler) bulk(c *fiber.Ctx, op func(ctx context.Context, userID, collectionID int, bookIDs []int) (BulkResult, error)) error {
	payload := new(bulkRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	res, err := op(c.Context(), userID, id, payload.BookIDs)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(res)
}

// collectionError maps service errors onto HTTP statuses.
func collectionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "collection not found"})
	case errors.Is(err, book.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "book not found"})
	case errors.Is(err, ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrBookInCollection):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrBookNotInList):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrInvalidBookCount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
