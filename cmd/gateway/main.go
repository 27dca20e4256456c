package main

import (
	"log"
	"net/http"

	"edge/pkg/cache"
	"edge/pkg/config"
	"edge/pkg/middleware"
	"edge/pkg/proxy"
	"edge/pkg/ratelimit"
	"edge/pkg/server"
)

func main() {
	cfg := config.LoadGateway()

	store, closeStore := newWindowStore(cfg)
	defer closeStore()

	limiter, err := ratelimit.New(store, ratelimit.Rule{
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	})
	if err != nil {
		log.Fatalf("[GATEWAY] Invalid rate limit rule: %v", err)
	}

	forwarder := proxy.NewForwarder(
		[]proxy.RequestHook{
			func(req *http.Request) {
				req.Header.Set("Content-Type", "application/json")
			},
		},
		[]proxy.ResponseHook{
			func(status int, _ []byte) {
				log.Printf("[GATEWAY] Response received from identity service: %d", status)
			},
		},
	)

	routes := []proxy.Route{
		{
			Prefix:    "/v1/auth",
			Upstream:  cfg.IdentityURL,
			Rewrite:   proxy.Rewrite{From: "/v1", To: "/api"},
			Sensitive: true,
		},
	}

	app := server.NewApp("gateway")
	app.Use(middleware.RequestLogger("GATEWAY"))

	// Rate limiting is mounted strictly before the forwarder so a denied
	// request never reaches the backend.
	for _, route := range routes {
		if route.Sensitive {
			app.Use(route.Prefix, ratelimit.Middleware(limiter))
		}
		app.Use(route.Prefix, forwarder.Handler(route))
	}

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("[GATEWAY] Identity service: %s", cfg.IdentityURL)
	log.Printf("[GATEWAY] Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[GATEWAY] Failed to start: %v", err)
	}
}

// newWindowStore picks the rate-limit window store: redis when configured
// (shared across gateway instances), process memory otherwise.
func newWindowStore(cfg config.Gateway) (ratelimit.Store, func()) {
	if cfg.RedisURL == "" {
		log.Println("[GATEWAY] REDIS_URL not set, rate limit windows are per-instance")
		return ratelimit.NewMemoryStore(), func() {}
	}

	log.Println("[GATEWAY] Connecting to Redis...")
	redis, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("[GATEWAY] Redis connection failed: %v", err)
	}
	log.Println("[GATEWAY] Redis connected")
	return redis, redis.Close
}
