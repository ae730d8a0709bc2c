package http

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// withUser stubs BasicAuth by stashing a fixed user in fiber locals, so
// handler tests can exercise the command handlers without the full
// middleware chain.
func withUser(user *domain.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	}
}

type stubFolderService struct {
	result in.FolderSyncResult
	err    error
}

func (s *stubFolderService) FolderSync(ctx context.Context, userID int64, deviceID string, clientKey domain.SyncKey) (in.FolderSyncResult, error) {
	return s.result, s.err
}

func newTestApp(h fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Post("/Microsoft-Server-ActiveSync", withUser(&domain.User{ID: 1, Email: "alice@example.com"}), h)
	return app
}

func encodeRequest(t *testing.T, root *wbxml.Element) []byte {
	t.Helper()
	body, err := wbxml.Encode(root)
	require.NoError(t, err)
	return body
}

func TestFolderSyncInitialRequestReturnsFixedHierarchy(t *testing.T) {
	h := &Handlers{
		folder:  &stubFolderService{result: in.FolderSyncResult{Status: domain.StatusOK, SyncKey: domain.SyncKey(1), Added: domain.FixedHierarchy()}},
		devices: nil,
	}
	app := newTestApp(h.FolderSync)

	req := wbxml.New(wbxml.PageFolderHierarchy, "FolderSync")
	req.Add(wbxml.NewText(wbxml.PageFolderHierarchy, "SyncKey", "0"))
	body := encodeRequest(t, req)

	httpReq := httptest.NewRequest("POST", "/Microsoft-Server-ActiveSync?DeviceId=dev-1", bytes.NewReader(body))
	httpReq.ContentLength = int64(len(body))
	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "14.1", resp.Header.Get("MS-Server-ActiveSync"))

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded, err := wbxml.Decode(respBody)
	require.NoError(t, err)
	require.Equal(t, "1", decoded.ChildText("Status"))
	require.Equal(t, "1", decoded.ChildText("SyncKey"))
	changes := decoded.Child("Changes")
	require.NotNil(t, changes)
	require.Equal(t, "5", changes.ChildText("Count"))
}

func TestProvisionFirstRequestIssuesTemporaryKey(t *testing.T) {
	h := &Handlers{
		provision: &stubProvisionService{result: in.ProvisionResult{PolicyKey: 7, State: domain.Temporary}},
	}
	app := newTestApp(h.Provision)

	req := wbxml.New(wbxml.PageProvision, "Provision")
	body := encodeRequest(t, req)

	httpReq := httptest.NewRequest("POST", "/Microsoft-Server-ActiveSync?DeviceId=dev-1&DeviceType=iPhone", bytes.NewReader(body))
	httpReq.ContentLength = int64(len(body))
	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "7", resp.Header.Get("X-MS-PolicyKey"))

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded, err := wbxml.Decode(respBody)
	require.NoError(t, err)
	policy := decoded.Child("Policies").Child("Policy")
	require.NotNil(t, policy)
	require.Equal(t, "7", policy.ChildText("PolicyKey"))
}

type stubProvisionService struct {
	result in.ProvisionResult
	err    error
}

func (s *stubProvisionService) Provision(ctx context.Context, userID int64, deviceID, deviceType string, echoedKey uint32) (in.ProvisionResult, error) {
	return s.result, s.err
}
func (s *stubProvisionService) Authorize(ctx context.Context, userID int64, deviceID string, presentedKey uint32) error {
	return nil
}
