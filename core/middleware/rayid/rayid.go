package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the header carrying the ray id in both directions.
const HeaderName = "X-Ray-ID"

// LocalsKey is the fiber Locals key under which the ray id is stored.
const LocalsKey = "ray_id"

// New returns a middleware that assigns a ray id to each request.
// An incoming X-Ray-ID header is reused so ids survive gateway hops.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}

// Get returns the ray id of the current request, if any.
func Get(c *fiber.Ctx) string {
	rid, _ := c.Locals(LocalsKey).(string)
	return rid
}
