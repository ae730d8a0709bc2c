package http

import (
	"easyncd/pkg/apperr"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// SendMail accepts a raw MIME payload (SPEC_FULL §4 supplement): unlike
// every other command, the request body is the RFC-822 message itself,
// not a WBXML envelope — matching the real protocol's SendMail content
// type. The response carries no body, just the usual protocol headers.
func (h *Handlers) SendMail(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	mime := c.Body()
	if len(mime) == 0 {
		return apperr.MalformedWBXML("SendMail: empty MIME payload")
	}
	if err := h.sendMail.SendMail(c.UserContext(), user.ID, mime); err != nil {
		return err
	}
	writeProtocolHeaders(c, 0)
	return c.Status(fiber.StatusOK).Send(nil)
}
