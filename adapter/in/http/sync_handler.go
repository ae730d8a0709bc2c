package http

import (
	"strconv"
	"strings"
	"time"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/pkg/apperr"
	"easyncd/pkg/wbxml"

	"easyncd/infra/middleware"

	"github.com/gofiber/fiber/v2"
)

// Sync implements C5 (spec §4.5): one collection request per Collection
// child, each run through the engine independently and rendered back into
// its own Collection response.
func (h *Handlers) Sync(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	deviceID := c.Query("DeviceId")

	root, err := decodeBody(c)
	if err != nil {
		return err
	}
	collsEl := root.Child("Collections")
	if collsEl == nil {
		return apperr.MalformedWBXML("Sync missing Collections")
	}

	respCollections := wbxml.New(wbxml.PageAirSync, "Collections")
	for _, collEl := range collsEl.AllChildren("Collection") {
		collectionID := collEl.ChildText("CollectionId")
		clientKey, ok := domain.ParseSyncKey(collEl.ChildText("SyncKey"))
		if !ok {
			respCollections.Add(renderSyncCollection(collectionID, in.SyncResult{
				CollectionID: collectionID,
				Status:       domain.StatusProtocolError,
			}))
			continue
		}

		windowSize := 0
		if ws := collEl.ChildText("WindowSize"); ws != "" {
			windowSize, _ = strconv.Atoi(ws)
		}

		req := in.SyncRequest{
			UserID:       user.ID,
			DeviceID:     deviceID,
			CollectionID: collectionID,
			ClientKey:    clientKey,
			WindowSize:   windowSize,
			Options:      parseSyncOptions(collEl.Child("Options")),
			Commands:     parseSyncCommands(collEl.Child("Commands")),
		}
		result, err := h.sync.Sync(c.UserContext(), req)
		if err != nil && result.Status != domain.StatusServerError {
			return err
		}
		// A failed store or ledger call is reported as collection Status 3;
		// the client retries with the same SyncKey.
		respCollections.Add(renderSyncCollection(collectionID, result))
	}

	resp := wbxml.New(wbxml.PageAirSync, "Sync")
	resp.Add(respCollections)
	return sendWBXML(c, resp, h.currentPolicyKey(c.UserContext(), user.ID, deviceID))
}

func parseSyncOptions(optsEl *wbxml.Element) domain.SyncOptions {
	var opts domain.SyncOptions
	if optsEl == nil {
		return opts
	}
	if ft := optsEl.ChildText("FilterType"); ft != "" {
		opts.FilterType, _ = strconv.Atoi(ft)
	}
	if ms := optsEl.ChildText("MIMESupport"); ms != "" {
		opts.MIMESupport, _ = strconv.Atoi(ms)
	}
	for _, bp := range optsEl.AllChildren("BodyPreference") {
		pref := domain.BodyPreference{}
		if t := bp.ChildText("Type"); t != "" {
			n, _ := strconv.Atoi(t)
			pref.Type = domain.BodyType(n)
		}
		if ts := bp.ChildText("TruncationSize"); ts != "" {
			pref.TruncationSize, _ = strconv.Atoi(ts)
		}
		pref.AllOrNone = bp.ChildText("AllOrNone") == "1"
		opts.BodyPreferences = append(opts.BodyPreferences, pref)
	}
	return opts
}

func parseSyncCommands(cmdsEl *wbxml.Element) []domain.ItemCommand {
	if cmdsEl == nil {
		return nil
	}
	var cmds []domain.ItemCommand
	for _, ch := range cmdsEl.Children {
		switch ch.Tag {
		case "Change":
			cmd := domain.ItemCommand{Kind: domain.CommandChange, ServerID: ch.ChildText("ServerId")}
			if appData := ch.Child("ApplicationData"); appData != nil {
				if r := appData.Child("Read"); r != nil {
					read := r.Text == "1"
					cmd.Read = &read
				}
			}
			cmds = append(cmds, cmd)
		case "Delete":
			cmds = append(cmds, domain.ItemCommand{Kind: domain.CommandDelete, ServerID: ch.ChildText("ServerId")})
		case "Add":
			cmd := domain.ItemCommand{Kind: domain.CommandAdd}
			if appData := ch.Child("ApplicationData"); appData != nil {
				if body := appData.Child("Body"); body != nil {
					if data := body.Child("Data"); data != nil {
						cmd.MIME = data.Opaque
					}
				}
			}
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func renderSyncCollection(collectionID string, result in.SyncResult) *wbxml.Element {
	coll := wbxml.New(wbxml.PageAirSync, "Collection")
	coll.Add(wbxml.NewText(wbxml.PageAirSync, "Class", "Email"))
	coll.Add(wbxml.NewText(wbxml.PageAirSync, "CollectionId", collectionID))
	coll.Add(wbxml.NewText(wbxml.PageAirSync, "Status", strconv.Itoa(int(result.Status))))
	if result.Batch == nil {
		return coll
	}

	coll.Add(wbxml.NewText(wbxml.PageAirSync, "SyncKey", result.Batch.ResponseSyncKey.String()))
	if result.Batch.MoreAvailable {
		coll.Add(wbxml.New(wbxml.PageAirSync, "MoreAvailable"))
	}
	if len(result.Batch.Items) > 0 {
		cmds := wbxml.New(wbxml.PageAirSync, "Commands")
		for _, it := range result.Batch.Items {
			cmds.Add(renderAddedItem(it))
		}
		coll.Add(cmds)
	}
	if len(result.Batch.Responses) > 0 {
		responses := wbxml.New(wbxml.PageAirSync, "Responses")
		for _, r := range result.Batch.Responses {
			change := wbxml.New(wbxml.PageAirSync, "Change")
			change.Add(wbxml.NewText(wbxml.PageAirSync, "ServerId", r.ServerID))
			change.Add(wbxml.NewText(wbxml.PageAirSync, "Status", strconv.Itoa(int(r.Status))))
			responses.Add(change)
		}
		coll.Add(responses)
	}
	return coll
}

func renderAddedItem(it domain.Item) *wbxml.Element {
	add := wbxml.New(wbxml.PageAirSync, "Add")
	add.Add(wbxml.NewText(wbxml.PageAirSync, "ServerId", it.ServerID))

	appData := wbxml.New(wbxml.PageAirSync, "ApplicationData")
	appData.Add(wbxml.NewText(wbxml.PageEmail, "Subject", it.Subject))
	appData.Add(wbxml.NewText(wbxml.PageEmail, "From", it.DisplayFrom()))
	if len(it.To) > 0 {
		appData.Add(wbxml.NewText(wbxml.PageEmail, "To", strings.Join(it.To, "; ")))
	}
	appData.Add(wbxml.NewText(wbxml.PageEmail, "DateReceived", formatDateReceived(it.ReceivedAt)))
	readFlag := "0"
	if it.Read {
		readFlag = "1"
	}
	appData.Add(wbxml.NewText(wbxml.PageEmail, "Read", readFlag))

	if len(it.RenderedData) > 0 || it.EstimatedDataSize > 0 {
		body := wbxml.New(wbxml.PageAirSyncBase, "Body")
		body.Add(wbxml.NewText(wbxml.PageAirSyncBase, "Type", strconv.Itoa(int(it.RenderedBodyType))))
		body.Add(wbxml.NewText(wbxml.PageAirSyncBase, "EstimatedDataSize", strconv.Itoa(it.EstimatedDataSize)))
		if it.Truncated {
			body.Add(wbxml.NewText(wbxml.PageAirSyncBase, "Truncated", "1"))
		}
		if it.RenderedBodyType == domain.BodyTypeMIME {
			body.Add(wbxml.NewOpaque(wbxml.PageAirSyncBase, "Data", it.RenderedData))
		} else {
			body.Add(wbxml.NewText(wbxml.PageAirSyncBase, "Data", string(it.RenderedData)))
		}
		appData.Add(body)
	}

	add.Add(appData)
	return add
}

func formatDateReceived(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format("2006-01-02T15:04:05.000Z")
}
