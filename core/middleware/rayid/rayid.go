package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// LocalsKey is the fiber locals key under which the ray id is stored.
	// logger.WithRayID reads the same key.
	LocalsKey = "ray_id"
	// HeaderName is the header carrying the ray id on responses.
	HeaderName = "X-Ray-Id"
)

// New returns a middleware that assigns every request a unique ray id.
// An id supplied by the caller via the X-Ray-Id header is kept, so upstream
// proxies can correlate their own traces with ours.
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
