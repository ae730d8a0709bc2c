package http

import (
	"easyncd/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// Dispatch implements the Cmd-selected routing table from spec §4.2.
// Unrecognized commands are HTTP 501 (spec §6).
func (h *Handlers) Dispatch(c *fiber.Ctx) error {
	switch c.Query("Cmd") {
	case "Provision":
		return h.Provision(c)
	case "FolderSync":
		return h.FolderSync(c)
	case "Sync":
		return h.Sync(c)
	case "Ping":
		return h.Ping(c)
	case "GetItemEstimate":
		return h.GetItemEstimate(c)
	case "Settings":
		return h.Settings(c)
	case "SendMail":
		return h.SendMail(c)
	default:
		return apperr.UnknownCommand(c.Query("Cmd"))
	}
}
