package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/saurabh-chakrabarthi/hermes/cache"
	config "github.com/saurabh-chakrabarthi/hermes/configs"
	"github.com/saurabh-chakrabarthi/hermes/database"
	"github.com/saurabh-chakrabarthi/hermes/handlers"
	"github.com/saurabh-chakrabarthi/hermes/jobs"
	"github.com/saurabh-chakrabarthi/hermes/routes"
	"github.com/saurabh-chakrabarthi/hermes/services"
	"github.com/saurabh-chakrabarthi/hermes/store"
	"github.com/saurabh-chakrabarthi/hermes/websocket"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	paymentStore := connectStore()
	listCache := connectCache()

	calc := services.NewFeeCalculator(rand.NewSource(time.Now().UnixNano()))
	paymentService := services.NewPaymentService(paymentStore, listCache, calc)

	handlers.Init(paymentService, paymentStore, listCache)
	jobs.Init(paymentService)

	c := cron.New()
	c.AddFunc("*/5 * * * *", jobs.WarmPaymentListCache)
	go c.Start()
	log.Println("✅ Cron job for cache warming scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Hermes Payments",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Hermes Payments API",
		})
	})

	routes.PaymentRoutes(app)
	routes.AdminRoutes(app)

	go websocket.RunHub()

	app.Get("/health", handlers.HealthCheck)

	port := config.Config("PORT")
	if port == "" {
		port = "9292"
	}

	log.Printf("✅ Server is running on port %s", port)
	err := app.Listen(":" + port)
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

func connectStore() store.PaymentStore {
	switch config.Config("STORE_BACKEND") {
	case "memory":
		log.Println("⚠️ Using in-memory payment store; data is lost on restart")
		return store.NewMemoryStore()
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Config("MONGO_URL")))
		if err != nil {
			log.Fatalf("🔥 Failed to connect to MongoDB: %v", err)
		}
		dbName := config.Config("MONGO_DB")
		if dbName == "" {
			dbName = "hermes_payments"
		}
		log.Println("✅ MongoDB connected successfully")
		return store.NewMongoStore(client, dbName)
	default:
		database.ConnectDB()
		database.Migrate()
		return store.NewGormStore(database.DB)
	}
}

func connectCache() cache.Cache {
	redisURL := config.Config("REDIS_URL")
	if redisURL == "" {
		log.Println("⚠️ REDIS_URL not set; using in-process cache")
		return cache.NewMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("🔥 Failed to configure Redis cache: %v", err)
	}
	log.Println("✅ Redis cache configured")
	return redisCache
}
