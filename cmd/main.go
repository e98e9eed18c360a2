package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/config"
	"github.com/Danielbclr/E-commerce-API/internal/handlers"
	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/messaging"
	"github.com/Danielbclr/E-commerce-API/internal/payment"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
	"github.com/Danielbclr/E-commerce-API/internal/service"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}

	setupLogger(cfg.LogLevel)
	log.Info().Str("app", cfg.AppName).Msg("Starting e-commerce API")

	db, err := repository.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection error")
	}
	defer db.Close()

	if err := repository.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("Database migration error")
	}

	store := repository.NewStore(db)

	userService := service.NewUserService(store)
	productService := service.NewProductService(store)
	cartService := service.NewCartService(store)
	orderService := service.NewOrderService(store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := userService.BootstrapData(ctx, cfg.AdminInitEmail, cfg.AdminInitPassword, cfg.AdminInitName); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Bootstrap data error")
	}
	cancel()

	// Settlement outcomes flow back either through the broker or through a
	// direct in-process dispatch; both land in the same idempotent handler.
	var rabbitClient *messaging.Client
	var notifier payment.SuccessNotifier
	if cfg.RabbitMQEnabled {
		rabbitClient = messaging.NewClient(cfg.RabbitMQURL(), cfg.RabbitMQExchange)
		if err := rabbitClient.Connect(); err != nil {
			log.Fatal().Err(err).Msg("RabbitMQ connection error")
		}
		defer rabbitClient.Close()

		consumer := messaging.NewConsumer(rabbitClient, cfg.RabbitMQQueue)
		if err := consumer.ConsumeSettlements(func(ctx context.Context, event messaging.PaymentSettledEvent) error {
			return orderService.HandlePaymentSuccess(ctx, event.OrderID, event.TransactionID)
		}); err != nil {
			log.Fatal().Err(err).Msg("RabbitMQ consume error")
		}

		notifier = messaging.NewPublisher(rabbitClient)
	} else {
		notifier = payment.NewDirectNotifier(orderService.HandlePaymentSuccess)
	}

	simulator := payment.NewSimulator(notifier, orderService)
	orderService.SetDispatcher(simulator)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := setupFiberApp(cfg.AppName)
	setupRoutes(app, userService, userHandler, productHandler, cartHandler, orderHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server start error")
	}
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func setupFiberApp(appName string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID,X-Request-ID",
	}))

	return app
}

func setupRoutes(
	app *fiber.App,
	users *service.UserService,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return httpx.Success(c, "Service is healthy", fiber.Map{
			"status": "UP",
		})
	})

	authenticated := handlers.RequireUser(users)
	adminOnly := handlers.RequireAdmin()

	api.Post("/users/register", userHandler.Register)
	api.Get("/users/me", authenticated, userHandler.GetCurrentUser)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProductByID)
	products.Post("/", authenticated, adminOnly, productHandler.CreateProduct)
	products.Put("/:id", authenticated, adminOnly, productHandler.UpdateProduct)
	products.Delete("/:id", authenticated, adminOnly, productHandler.DeleteProduct)

	cart := api.Group("/cart", authenticated)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:itemId", cartHandler.UpdateItem)
	cart.Delete("/items/:itemId", cartHandler.RemoveItem)

	orders := api.Group("/orders", authenticated)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.GetOrders)
	orders.Get("/:id", orderHandler.GetOrderByID)

	app.Use("*", func(c *fiber.Ctx) error {
		return httpx.NotFound(c, "Route not found")
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")

	return c.Status(code).JSON(httpx.APIResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now(),
	})
}
