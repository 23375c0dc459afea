package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"tessera/internal/admin"
	"tessera/internal/config"
	"tessera/internal/gateway"
	"tessera/internal/instrument"
	"tessera/internal/metadata"
	"tessera/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, driver: %s, table: %s)",
		cfg.Server.Port, cfg.Database.Driver, cfg.Table.Name)

	// 2. Load the table schema
	spec, err := metadata.LoadTableSpec(cfg.Table.SchemaFile)
	if err != nil {
		log.Fatalf("Failed to load table schema: %v", err)
	}

	// 3. Open the physical backend and ensure the table exists
	var client store.TableClient
	if cfg.Database.IsMemory() {
		client = store.NewMemoryTable(cfg.Table.Name, spec)
		log.Println("Using in-memory backend")
	} else {
		db, err := store.New(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := store.EnsureTable(ctx, db, cfg.Table.Name, spec); err != nil {
			log.Fatalf("Failed to ensure table: %v", err)
		}
		client = store.NewTableClient(db, cfg.Table.Name, spec)
		log.Printf("Database connected (%s)", db.Dialect.Name())
	}

	// 4. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: gateway.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	recorder := instrument.NewRingRecorder(cfg.Server.RequestLogSize)
	app.Use(instrument.Middleware(recorder))

	// 5. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "table": cfg.Table.Name})
	})

	// 6. Token exchange (not behind auth: this route issues tokens)
	tokenHandler := gateway.NewTokenHandler(cfg.Auth.Principals, cfg.Table.Name, cfg.JWTSecret)
	gateway.RegisterTokenRoutes(app, tokenHandler)

	// 7. Table routes behind auth
	authMW := gateway.AuthMiddleware(cfg.JWTSecret, cfg.Table.Name)
	gateway.RegisterRoutes(app, gateway.NewHandler(client, cfg.Table.Name), authMW)

	// 8. Admin surface behind the same auth
	admin.RegisterAdminRoutes(app, admin.NewHandler(cfg.Table.Name, spec, recorder), authMW)

	log.Printf("Gateway listening on :%d", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
