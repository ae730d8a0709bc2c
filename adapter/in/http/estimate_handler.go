package http

import (
	"strconv"

	"easyncd/pkg/apperr"
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetItemEstimate implements the SPEC_FULL supplemental command: one
// Estimate per requested Collection, read-only.
func (h *Handlers) GetItemEstimate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	deviceID := c.Query("DeviceId")

	root, err := decodeBody(c)
	if err != nil {
		return err
	}
	collsEl := root.Child("Collections")
	if collsEl == nil {
		return apperr.MalformedWBXML("GetItemEstimate missing Collections")
	}

	response := wbxml.New(wbxml.PageGetItemEstimate, "Response")
	for _, collEl := range collsEl.AllChildren("Collection") {
		collectionID := collEl.ChildText("CollectionId")
		estimate, err := h.estimate.Estimate(c.UserContext(), user.ID, deviceID, collectionID)
		status := "1"
		if err != nil {
			status = "3"
			estimate = 0
		}
		collResp := wbxml.New(wbxml.PageGetItemEstimate, "Collection")
		collResp.Add(wbxml.NewText(wbxml.PageGetItemEstimate, "CollectionId", collectionID))
		collResp.Add(wbxml.NewText(wbxml.PageGetItemEstimate, "Status", status))
		collResp.Add(wbxml.NewText(wbxml.PageGetItemEstimate, "Estimate", strconv.Itoa(estimate)))
		response.Add(collResp)
	}

	resp := wbxml.New(wbxml.PageGetItemEstimate, "GetItemEstimate")
	resp.Add(response)
	return sendWBXML(c, resp, h.currentPolicyKey(c.UserContext(), user.ID, deviceID))
}
