package http

import (
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// Settings is a stub-compatible extension point (SPEC_FULL §4 supplement):
// it echoes a minimal fixed DeviceInformation/UserInformation body so
// clients that probe Settings before Provision don't break. It is exempt
// from the provisioning gate (spec §4.2) but still requires auth.
func (h *Handlers) Settings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	resp := wbxml.New(wbxml.PageSettings, "Settings")
	resp.Add(wbxml.NewText(wbxml.PageSettings, "Status", "1"))

	devInfo := wbxml.New(wbxml.PageSettings, "DeviceInformation")
	devInfo.Add(wbxml.NewText(wbxml.PageSettings, "Status", "1"))
	resp.Add(devInfo)

	userInfo := wbxml.New(wbxml.PageSettings, "UserInformation")
	userInfo.Add(wbxml.NewText(wbxml.PageSettings, "Status", "1"))
	emails := wbxml.New(wbxml.PageSettings, "EmailAddresses")
	emails.Add(wbxml.NewText(wbxml.PageSettings, "SmtpAddress", user.Email))
	userInfo.Add(emails)
	resp.Add(userInfo)

	return sendWBXML(c, resp, 0)
}
