package main

import (
	"database/sql"
	"log"

	"edge/pkg/broker"
	"edge/pkg/cache"
	"edge/pkg/config"
	"edge/pkg/database"
	"edge/pkg/handlers"
	"edge/pkg/middleware"
	"edge/pkg/repository"
	"edge/pkg/server"
	"edge/pkg/token"
)

func main() {
	cfg := config.LoadIdentity()

	db := database.Connect(cfg.DatabaseURL)
	defer db.Close()
	setupDatabase(db)

	var redis *cache.Redis
	var events *broker.Broker
	if cfg.RedisURL != "" {
		log.Println("[IDENTITY] Connecting to Redis...")
		var err error
		redis, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("[IDENTITY] Redis connection failed: %v", err)
		}
		defer redis.Close()
		events = broker.New(redis, "identity")
		log.Println("[IDENTITY] Redis connected")
	} else {
		log.Println("[IDENTITY] REDIS_URL not set, user cache and events disabled")
	}

	issuer, err := token.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("[IDENTITY] Invalid token config: %v", err)
	}

	h := handlers.NewIdentity(repository.NewUserRepository(db), issuer, events, redis)

	app := server.NewApp("identity")
	app.Use(middleware.RequestLogger("IDENTITY"))

	api := app.Group("/api/auth")
	api.Post("/register", h.Register)
	api.Get("/me", middleware.Protected(cfg.JWTSecret), h.Me)

	app.Get("/internal/users/:uuid", h.GetUserByUUID)

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("[IDENTITY] Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[IDENTITY] Failed to start: %v", err)
	}
}

func setupDatabase(db *sql.DB) {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		uuid UUID UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid);
	`
	if _, err := db.Exec(schema); err != nil {
		log.Fatal("[IDENTITY] Schema setup failed:", err)
	}
	log.Println("[IDENTITY] Schema initialized")
}
