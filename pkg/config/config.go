// Package config loads service configuration from the environment once at
// process start. There is no hot reload.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Gateway struct {
	Port            string
	IdentityURL     string
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type Identity struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

func LoadGateway() Gateway {
	loadDotenv()
	return Gateway{
		Port:            getEnv("PORT", "5000"),
		IdentityURL:     getEnv("IDENTITY_SERVICE_URL", "http://localhost:5001"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}
}

func LoadIdentity() Identity {
	loadDotenv()
	return Identity{
		Port:        getEnv("PORT", "5001"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-key-change-in-production"),
		AccessTTL:   getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTTL:  getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
	}
}

func loadDotenv() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
