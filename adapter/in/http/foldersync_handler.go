package http

import (
	"strconv"

	"easyncd/core/domain"
	"easyncd/pkg/apperr"
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// FolderSync implements the single C4 operation (spec §4.4).
func (h *Handlers) FolderSync(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	deviceID := c.Query("DeviceId")

	root, err := decodeBody(c)
	if err != nil {
		return err
	}
	clientKey, ok := domain.ParseSyncKey(root.ChildText("SyncKey"))
	if !ok {
		return apperr.MalformedWBXML("invalid SyncKey")
	}

	result, err := h.folder.FolderSync(c.UserContext(), user.ID, deviceID, clientKey)
	if err != nil {
		return err
	}

	resp := wbxml.New(wbxml.PageFolderHierarchy, "FolderSync")
	resp.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "Status", strconv.Itoa(int(result.Status))))
	resp.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "SyncKey", result.SyncKey.String()))
	if len(result.Added) > 0 {
		changes := wbxml.New(wbxml.PageFolderHierarchy, "Changes")
		changes.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "Count", strconv.Itoa(len(result.Added))))
		for _, f := range result.Added {
			add := wbxml.New(wbxml.PageFolderHierarchy, "Add")
			add.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "ServerId", f.ServerID))
			add.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "ParentId", f.ParentID))
			add.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "DisplayName", f.DisplayName))
			add.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "Type", strconv.Itoa(int(f.Type))))
			changes.Add(add)
		}
		resp.Add(changes)
	}

	return sendWBXML(c, resp, h.currentPolicyKey(c.UserContext(), user.ID, deviceID))
}
