// Package mailops implements the small SendMail extension (SPEC_FULL §4):
// filing an outgoing message into Sent Items. No SMTP relay is attempted;
// relaying mail is explicitly out of scope (spec §1).
package mailops

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"easyncd/core/domain"
	"easyncd/core/port/out"
)

const sentFolderID = "4" // domain.FixedHierarchy ServerID for Sent Items

// SendMailService implements in.SendMailService.
type SendMailService struct {
	store out.Store
	graph out.ConversationGraph // optional; nil is a valid no-op
}

func NewSendMailService(store out.Store, graph out.ConversationGraph) *SendMailService {
	return &SendMailService{store: store, graph: graph}
}

func (s *SendMailService) SendMail(ctx context.Context, userID int64, mime []byte) error {
	if len(mime) == 0 {
		return fmt.Errorf("sendmail: empty MIME payload")
	}
	item := parseOutgoing(mime)
	serverID, err := s.store.InsertItem(ctx, userID, sentFolderID, item)
	if err != nil {
		return fmt.Errorf("sendmail: insert into sent: %w", err)
	}
	if s.graph != nil && item.ConversationID != "" {
		// threading is supplemental; a failure here never fails SendMail.
		_ = s.graph.RecordEdge(item.ConversationID, "", serverID)
	}
	return nil
}

// parseOutgoing reads just enough of the RFC-822 message to file it
// correctly: the original headers travel unparsed in MIMEBytes regardless.
func parseOutgoing(mime []byte) domain.Item {
	item := domain.Item{MIMEBytes: mime, Read: true}
	msg, err := mail.ReadMessage(strings.NewReader(string(mime)))
	if err != nil {
		return item
	}
	header := msg.Header
	item.Subject = header.Get("Subject")
	item.From = header.Get("From")
	if to, err := header.AddressList("To"); err == nil {
		for _, addr := range to {
			item.To = append(item.To, addr.Address)
		}
	}
	if id := header.Get("References"); id != "" {
		item.ConversationID = strings.Fields(id)[0]
	} else if id := header.Get("Message-Id"); id != "" {
		item.ConversationID = id
	}
	return item
}
