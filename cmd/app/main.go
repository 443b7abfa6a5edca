package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"

	"github.com/bookmind/book-store-backend/internal/book"
	"github.com/bookmind/book-store-backend/internal/cart"
	"github.com/bookmind/book-store-backend/internal/checkout"
	"github.com/bookmind/book-store-backend/internal/collection"
	"github.com/bookmind/book-store-backend/internal/config"
	"github.com/bookmind/book-store-backend/internal/order"
	"github.com/bookmind/book-store-backend/internal/store"
	"github.com/bookmind/book-store-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	tx := store.NewManager(db)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, cfg.JWTSecret)

	bookRepo := book.NewPostgresRepository(db)
	bookService := book.NewService(bookRepo)
	bookHandler := book.NewHandler(bookService)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo, bookRepo, userService, tx)
	cartHandler := cart.NewHandler(cartService)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, tx)
	orderHandler := order.NewHandler(orderService)

	checkoutService := checkout.NewService(cartRepo, orderRepo, tx)
	checkoutHandler := checkout.NewHandler(checkoutService)

	collectionRepo := collection.NewPostgresRepository(db)
	collectionService := collection.NewService(collectionRepo, bookRepo, tx)
	collectionHandler := collection.NewHandler(collectionService)

	app := fiber.New()
	setupCORS(app)

	userHandler.RegisterPublicRoutes(app)
	bookHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	bookHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	collectionHandler.RegisterProtectedRoutes(app)

	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("listen on %s: %v", cfg.Addr, err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}
