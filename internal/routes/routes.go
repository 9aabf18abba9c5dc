package routes

import (
	"log"

	"github.com/acoder25/Electronics-marketplace/internal/config"
	"github.com/acoder25/Electronics-marketplace/internal/handlers"
	"github.com/acoder25/Electronics-marketplace/internal/middleware"
	"github.com/acoder25/Electronics-marketplace/internal/repository"
	"github.com/acoder25/Electronics-marketplace/internal/services"
	chatws "github.com/acoder25/Electronics-marketplace/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	var storageService services.StorageService
	if local, err := services.NewLocalStorageService(cfg.UploadDir, "uploads"); err != nil {
		log.Printf("Image storage disabled: %v", err)
	} else {
		storageService = local
	}

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo)
	productHandler := handlers.NewProductHandler(productService, storageService)
	chatHub := chatws.NewHub()
	chatService := services.NewChatService(messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	products := api.Group("/products")
	products.Get("", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// The upgrade chain authenticates via ?token= and must be registered
	// ahead of the bearer-token group sharing the /v1 prefix, or that
	// group's header check rejects the dial first.
	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	authProtected.Get("/users/products", productHandler.MyProducts)
	authProtected.Post("/products", productHandler.CreateProduct)
	authProtected.Put("/products/:id", productHandler.UpdateProduct)
	authProtected.Delete("/products/:id", productHandler.DeleteProduct)

	authProtected.Get("/conversations", chatHandler.ListConversations)
	authProtected.Get("/messages/:userId", chatHandler.GetMessages)
	authProtected.Post("/messages", chatHandler.SendMessage)
}
