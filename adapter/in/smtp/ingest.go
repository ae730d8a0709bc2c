// Package smtp is the thin ingress shim spec §6 calls the "Notification
// interface": something outside core has to durably insert incoming mail
// and then call notifier.Notify(user_id, collection_id) so long-polling
// Ping requests wake up. Relaying or accepting mail over the wire protocol
// is explicitly out of scope (spec §1) — this package only covers the
// insert-then-notify step an MTA would hand off to, and its wire listener
// is deliberately omitted; Deliver is the integration point a real MTA
// plugin would call.
package smtp

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"easyncd/core/domain"
	"easyncd/core/port/out"
	"easyncd/pkg/logger"
)

const inboxFolderID = "1" // domain.FixedHierarchy ServerID for the Inbox

// Ingress durably stores an inbound message and wakes any Ping long-poll
// parked on the recipient's inbox collection.
type Ingress struct {
	store    out.Store
	notifier out.Notifier
	log      *logger.Logger
}

func NewIngress(store out.Store, notifier out.Notifier, log *logger.Logger) *Ingress {
	return &Ingress{store: store, notifier: notifier, log: log}
}

// Deliver parses raw RFC-822 bytes, inserts the item into the given
// user's inbox, and notifies. userID is already resolved by
// whatever MTA integration calls Deliver — address-to-user mapping is
// deployment-specific and not part of this shim.
func (ig *Ingress) Deliver(ctx context.Context, userID int64, raw []byte) error {
	item, err := parseItem(raw)
	if err != nil {
		return fmt.Errorf("smtp ingest: parse: %w", err)
	}

	if _, err := ig.store.InsertItem(ctx, userID, inboxFolderID, item); err != nil {
		return fmt.Errorf("smtp ingest: insert: %w", err)
	}

	ig.notifier.Notify(userID, inboxFolderID)
	ig.log.WithField("user_id", userID).Info("mail_delivered")
	return nil
}

func parseItem(raw []byte) (domain.Item, error) {
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return domain.Item{}, err
	}

	header := msg.Header
	item := domain.Item{
		Subject:   header.Get("Subject"),
		From:      header.Get("From"),
		MIMEBytes: raw,
	}
	if to, err := header.AddressList("To"); err == nil {
		for _, addr := range to {
			item.To = append(item.To, addr.Address)
		}
	}
	if t, err := header.Date(); err == nil {
		item.ReceivedAt = t.Unix()
	}
	if id := header.Get("References"); id != "" {
		fields := strings.Fields(id)
		item.ConversationID = fields[0]
	} else if id := header.Get("Message-Id"); id != "" {
		item.ConversationID = id
	}
	return item, nil
}
