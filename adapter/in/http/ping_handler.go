package http

import (
	"strconv"
	"time"

	in "easyncd/core/port/in"
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// Ping implements C6 (spec §4.6): this handler blocks in h.ping.Ping until
// a watched collection is notified or the clamped heartbeat expires. The
// context it passes is c.UserContext(), which fiber does not cancel when
// the client disconnects, so a dropped connection stays parked until one
// of those two events.
func (h *Handlers) Ping(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	deviceID := c.Query("DeviceId")

	root, err := decodeBody(c)
	if err != nil {
		return err
	}

	var heartbeat time.Duration
	if hb := root.ChildText("HeartbeatInterval"); hb != "" {
		if n, perr := strconv.Atoi(hb); perr == nil {
			heartbeat = time.Duration(n) * time.Second
		}
	}
	var collections []string
	if folders := root.Child("Folders"); folders != nil {
		for _, f := range folders.AllChildren("Folder") {
			if id := f.ChildText("Id"); id != "" {
				collections = append(collections, id)
			}
		}
	}

	result, err := h.ping.Ping(c.UserContext(), in.PingRequest{
		UserID:      user.ID,
		DeviceID:    deviceID,
		Heartbeat:   heartbeat,
		Collections: collections,
	})
	if err != nil {
		return err
	}

	resp := wbxml.New(wbxml.PagePing, "Ping")
	resp.Add(wbxml.NewText(wbxml.PagePing, "Status", strconv.Itoa(int(result.Status))))
	if len(result.Changed) > 0 {
		folders := wbxml.New(wbxml.PagePing, "Folders")
		for _, id := range result.Changed {
			folder := wbxml.New(wbxml.PagePing, "Folder")
			folder.Add(wbxml.NewText(wbxml.PagePing, "Id", id))
			folders.Add(folder)
		}
		resp.Add(folders)
	}

	return sendWBXML(c, resp, h.currentPolicyKey(c.UserContext(), user.ID, deviceID))
}
