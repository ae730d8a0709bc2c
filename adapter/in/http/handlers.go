// Package http adapts the EAS wire protocol (spec §4.1/§6) onto fiber:
// one WBXML-in/WBXML-out handler per command, dispatched by the Cmd query
// parameter from a single POST endpoint.
package http

import (
	"context"
	"strconv"

	in "easyncd/core/port/in"
	out "easyncd/core/port/out"
	"easyncd/pkg/apperr"
	"easyncd/pkg/wbxml"

	"github.com/gofiber/fiber/v2"
)

const (
	protocolVersion  = "14.1"
	protocolVersions = "2.5,12.0,12.1,14.0,14.1,16.1"
	protocolCommands = "Sync,FolderSync,Provision,Ping,GetItemEstimate,Settings,SendMail"
	wbxmlContentType = "application/vnd.ms-sync.wbxml"
)

// Handlers bundles the inbound service ports the router dispatches to.
// devices is used only to read back a device's current PolicyKey for the
// response header (spec §4.2) — no write path runs through it here.
type Handlers struct {
	sync      in.SyncService
	folder    in.FolderService
	provision in.ProvisionService
	ping      in.PingService
	estimate  in.GetItemEstimateService
	sendMail  in.SendMailService
	devices   out.DeviceRepository
}

func NewHandlers(
	sync in.SyncService,
	folder in.FolderService,
	provision in.ProvisionService,
	ping in.PingService,
	estimate in.GetItemEstimateService,
	sendMail in.SendMailService,
	devices out.DeviceRepository,
) *Handlers {
	return &Handlers{
		sync:      sync,
		folder:    folder,
		provision: provision,
		ping:      ping,
		estimate:  estimate,
		sendMail:  sendMail,
		devices:   devices,
	}
}

// currentPolicyKey looks up the device's current key for the response
// header; 0 (no header written) if the device is unknown or the lookup
// fails — a response shouldn't fail just because the header is advisory.
func (h *Handlers) currentPolicyKey(ctx context.Context, userID int64, deviceID string) uint32 {
	if h.devices == nil || deviceID == "" {
		return 0
	}
	dev, err := h.devices.Get(ctx, userID, deviceID)
	if err != nil || dev == nil {
		return 0
	}
	return dev.PolicyKey
}

func writeProtocolHeaders(c *fiber.Ctx, policyKey uint32) {
	c.Set("MS-Server-ActiveSync", protocolVersion)
	c.Set("MS-ASProtocolVersions", protocolVersions)
	c.Set("MS-ASProtocolCommands", protocolCommands)
	c.Set("Cache-Control", "private")
	if policyKey != 0 {
		c.Set("X-MS-PolicyKey", strconv.FormatUint(uint64(policyKey), 10))
	}
}

func decodeBody(c *fiber.Ctx) (*wbxml.Element, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, apperr.MalformedWBXML("empty body")
	}
	root, err := wbxml.Decode(body)
	if err != nil {
		return nil, apperr.MalformedWBXML(err.Error())
	}
	return root, nil
}

func sendWBXML(c *fiber.Ctx, root *wbxml.Element, policyKey uint32) error {
	body, err := wbxml.Encode(root)
	if err != nil {
		return apperr.InternalWithError(err)
	}
	writeProtocolHeaders(c, policyKey)
	c.Set(fiber.HeaderContentType, wbxmlContentType)
	return c.Status(fiber.StatusOK).Send(body)
}

func parsePolicyKeyDigits(s string) uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func policyKeyString(key uint32) string {
	return strconv.FormatUint(uint64(key), 10)
}
