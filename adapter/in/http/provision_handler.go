package http

import (
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// Provision implements the two-phase handshake request (spec §4.3). The
// echoed PolicyKey, if any, travels either as a bare top-level PolicyKey or
// nested under Policies/Policy/PolicyKey; both shapes are accepted.
func (h *Handlers) Provision(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	deviceID := c.Query("DeviceId")
	deviceType := c.Query("DeviceType")

	root, err := decodeBody(c)
	if err != nil {
		return err
	}
	echoed := parsePolicyKeyDigits(echoedPolicyKey(root))

	result, err := h.provision.Provision(c.UserContext(), user.ID, deviceID, deviceType, echoed)
	if err != nil {
		return err
	}

	resp := wbxml.New(wbxml.PageProvision, "Provision")
	resp.Add(wbxml.NewText(wbxml.PageProvision, "Status", "1"))
	policies := wbxml.New(wbxml.PageProvision, "Policies")
	policy := wbxml.New(wbxml.PageProvision, "Policy")
	policy.Add(wbxml.NewText(wbxml.PageProvision, "PolicyType", "MS-EAS-Provisioning-WBXML"))
	policy.Add(wbxml.NewText(wbxml.PageProvision, "Status", "1"))
	policy.Add(wbxml.NewText(wbxml.PageProvision, "PolicyKey", policyKeyString(result.PolicyKey)))
	policies.Add(policy)
	resp.Add(policies)

	return sendWBXML(c, resp, result.PolicyKey)
}

func echoedPolicyKey(root *wbxml.Element) string {
	if s := root.ChildText("PolicyKey"); s != "" {
		return s
	}
	policies := root.Child("Policies")
	if policies == nil {
		return ""
	}
	policy := policies.Child("Policy")
	if policy == nil {
		return ""
	}
	return policy.ChildText("PolicyKey")
}
