package sync

import "easyncd/core/domain"

// renderBody selects and truncates the AirSyncBase.Body representation
// per the collection's requested body_preference (spec §4.5 "Item
// rendering"). When no preference is given, plain text is the default.
func renderBody(item domain.Item, opts domain.SyncOptions) domain.Item {
	pref := choosePreference(opts.BodyPreferences)

	var raw []byte
	switch pref.Type {
	case domain.BodyTypeHTML:
		raw = []byte(item.BodyHTML)
	case domain.BodyTypeMIME:
		raw = item.MIMEBytes
	default:
		raw = []byte(item.BodyPlain)
	}

	item.RenderedBodyType = pref.Type
	item.EstimatedDataSize = len(raw)

	if pref.TruncationSize > 0 && len(raw) > pref.TruncationSize {
		item.RenderedData = raw[:pref.TruncationSize]
		item.Truncated = true
	} else {
		item.RenderedData = raw
		item.Truncated = false
	}
	return item
}

func choosePreference(prefs []domain.BodyPreference) domain.BodyPreference {
	for _, p := range prefs {
		if p.Type == domain.BodyTypeMIME {
			return p // MIME is the preferred path per spec §4.5 when offered
		}
	}
	if len(prefs) > 0 {
		return prefs[0]
	}
	return domain.BodyPreference{Type: domain.BodyTypePlain}
}
