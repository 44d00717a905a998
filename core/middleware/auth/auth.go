package auth

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderApiKey carries the shared secret of the upstream gateway.
	HeaderApiKey = "X-API-Key"
	// HeaderUserID carries the authenticated user resolved by the gateway.
	HeaderUserID = "X-User-ID"
	// HeaderUserAdmin is "true" when that user is a site admin.
	HeaderUserAdmin = "X-User-Admin"

	actorKey = "actor"
)

// Config holds the middleware configuration.
type Config struct {
	// ApiKey is the expected gateway key. Empty disables the key check.
	ApiKey string
	// Skip lists path prefixes that bypass the middleware entirely.
	Skip []string
}

// Actor is the user on whose behalf a request runs.
type Actor struct {
	UserID string
	Admin  bool
}

// Anonymous reports whether no user is attached.
func (a Actor) Anonymous() bool {
	return a.UserID == ""
}

// New returns the auth middleware. Session handling lives in the gateway; this
// middleware only checks the gateway key and reads the acting user it forwards.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, prefix := range cfg.Skip {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		if cfg.ApiKey != "" {
			key := c.Get(HeaderApiKey)
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
			}
		}

		admin, _ := strconv.ParseBool(c.Get(HeaderUserAdmin))
		c.Locals(actorKey, Actor{UserID: c.Get(HeaderUserID), Admin: admin})
		return c.Next()
	}
}

// ActorFrom returns the acting user of the request.
func ActorFrom(c *fiber.Ctx) Actor {
	a, _ := c.Locals(actorKey).(Actor)
	return a
}

// RequireUser rejects requests without an acting user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ActorFrom(c).Anonymous() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose actor is not a site admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := ActorFrom(c)
		if a.Anonymous() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !a.Admin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}
