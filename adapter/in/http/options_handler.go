package http

import "github.com/gofiber/fiber/v2"

// Options implements the discovery probe (spec §6): no auth, no body
// decode, just the protocol capability headers plus a minimal text body.
func (h *Handlers) Options(c *fiber.Ctx) error {
	c.Set("Allow", "OPTIONS, POST")
	writeProtocolHeaders(c, 0)
	return c.Status(fiber.StatusOK).SendString("OK")
}
