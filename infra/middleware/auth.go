package middleware

import (
	"context"
	"encoding/base64"
	"strings"

	"easyncd/core/domain"
	"easyncd/core/port/out"
	"easyncd/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// userLookup is the subset of out.Store auth needs. Keeping it narrow lets
// the middleware be tested without a full Store fake.
type userLookup interface {
	GetUser(ctx context.Context, login string) (*domain.User, error)
}

// BasicAuth implements spec §4.2 step 1: HTTP Basic, username is a mail
// address or local-part. On success the resolved *domain.User is stashed
// in c.Locals("user") for downstream handlers.
func BasicAuth(store userLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		login, _, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperr.AuthRequired()
		}

		user, err := store.GetUser(c.UserContext(), login)
		if err != nil {
			if _, isNotFound := err.(*out.NotFoundError); isNotFound {
				return apperr.AuthFailed()
			}
			return apperr.InternalWithError(err)
		}
		if user == nil {
			return apperr.AuthFailed()
		}
		c.Locals("user", user)
		return c.Next()
	}
}

func parseBasicAuth(header string) (login, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	login, password, found := strings.Cut(string(decoded), ":")
	if !found || login == "" {
		return "", "", false
	}
	return login, password, true
}

// CurrentUser retrieves the user BasicAuth attached to the request.
func CurrentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// deviceAuthorizer is the subset of in.ProvisionService the gate needs.
type deviceAuthorizer interface {
	Authorize(ctx context.Context, userID int64, deviceID string, presentedKey uint32) error
}

// ProvisioningGate implements spec §4.2 step 4: every command other than
// Provision, Settings and OPTIONS requires an already-provisioned device
// presenting its current PolicyKey via X-MS-PolicyKey.
func ProvisioningGate(provision deviceAuthorizer) fiber.Handler {
	exempt := map[string]struct{}{"Provision": {}, "Settings": {}}
	return func(c *fiber.Ctx) error {
		cmd := c.Query("Cmd")
		if _, ok := exempt[cmd]; ok {
			return c.Next()
		}
		user := CurrentUser(c)
		deviceID := c.Query("DeviceId")
		var presentedKey uint32
		if v := c.Get("X-MS-PolicyKey"); v != "" {
			presentedKey = parsePolicyKey(v)
		}
		if err := provision.Authorize(c.UserContext(), user.ID, deviceID, presentedKey); err != nil {
			return err
		}
		return c.Next()
	}
}

func parsePolicyKey(v string) uint32 {
	var n uint32
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + uint32(r-'0')
	}
	return n
}
