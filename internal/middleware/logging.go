// Package middleware holds the Fiber middleware shared by every route.
package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Logging logs one line per request: id, method, path, status, duration.
// The id comes from the requestid middleware, which must be mounted first.
func Logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		log.Printf("[%s] %s %s -> %d (%s)", id, c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}
