// Package proxy relays inbound requests to an upstream service with a
// prefix rewrite, surfacing transport failures as a uniform error payload.
package proxy

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Route maps a public path prefix to an upstream base URL. Built once at
// startup and never mutated.
type Route struct {
	Prefix    string
	Upstream  string
	Rewrite   Rewrite
	Sensitive bool
}

// Rewrite is a pure prefix substitution applied to the inbound path,
// e.g. {From: "/v1", To: "/api"}.
type Rewrite struct {
	From string
	To   string
}

func (rw Rewrite) Apply(path string) string {
	if rw.From != "" && strings.HasPrefix(path, rw.From) {
		return rw.To + strings.TrimPrefix(path, rw.From)
	}
	return path
}

// RequestHook may adjust outbound headers before the request is sent.
type RequestHook func(req *http.Request)

// ResponseHook observes the upstream response. It must not alter what is
// relayed to the client.
type ResponseHook func(status int, body []byte)

type Forwarder struct {
	client     *http.Client
	onRequest  []RequestHook
	onResponse []ResponseHook
}

func NewForwarder(onRequest []RequestHook, onResponse []ResponseHook) *Forwarder {
	return &Forwarder{
		client:     &http.Client{Timeout: 30 * time.Second},
		onRequest:  onRequest,
		onResponse: onResponse,
	}
}

// Handler forwards every matched request to the route's upstream. A single
// attempt only: no retries and no circuit breaking, a failed send is
// reported to the client immediately.
func (f *Forwarder) Handler(route Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target := route.Upstream + route.Rewrite.Apply(c.OriginalURL())

		req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), target, bytes.NewReader(c.Body()))
		if err != nil {
			return forwardingError(c, err)
		}

		for key, values := range c.GetReqHeaders() {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		for _, hook := range f.onRequest {
			hook(req)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return forwardingError(c, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return forwardingError(c, err)
		}

		for _, hook := range f.onResponse {
			hook(resp.StatusCode, body)
		}

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			c.Set("Content-Type", ct)
		}
		return c.Status(resp.StatusCode).Send(body)
	}
}

// forwardingError translates a transport-level failure (refused, timeout,
// DNS) into the fixed 500 payload. The trailing comma in the message is
// kept for wire compatibility with existing clients.
func forwardingError(c *fiber.Ctx, err error) error {
	log.Printf("[GATEWAY] Proxy error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error,",
		"error":   err.Error(),
	})
}
