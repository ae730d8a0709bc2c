package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ConversationAdapter implements out.ConversationGraph: items sharing a
// ConversationID are linked as a thread so GetItemEstimate and clients'
// conversation views can report per-thread size (SPEC_FULL §4 supplement).
type ConversationAdapter struct {
	driver neo4j.DriverWithContext
	dbName string
}

func NewConversationAdapter(driver neo4j.DriverWithContext, dbName string) *ConversationAdapter {
	return &ConversationAdapter{driver: driver, dbName: dbName}
}

func (a *ConversationAdapter) EnsureIndexes(ctx context.Context) error {
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	queries := []string{
		`CREATE CONSTRAINT conversation_unique IF NOT EXISTS FOR (c:Conversation) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT message_unique IF NOT EXISTS FOR (m:Message) REQUIRE m.server_id IS UNIQUE`,
	}
	for _, q := range queries {
		if _, err := session.Run(ctx, q, nil); err != nil {
			continue // index/constraint already exists
		}
	}
	return nil
}

func (a *ConversationAdapter) RecordEdge(conversationID, parentServerID, childServerID string) error {
	ctx := context.Background()
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	query := `
		MERGE (c:Conversation {id: $conversationID})
		MERGE (child:Message {server_id: $childID})
		SET child.conversation_id = $conversationID
		MERGE (c)-[:CONTAINS]->(child)
	`
	params := map[string]any{"conversationID": conversationID, "childID": childServerID}
	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("graph: record edge: %w", err)
	}

	if parentServerID != "" {
		linkQuery := `
			MATCH (parent:Message {server_id: $parentID}), (child:Message {server_id: $childID})
			MERGE (parent)-[:REPLIED_BY]->(child)
		`
		_, err := session.Run(ctx, linkQuery, map[string]any{"parentID": parentServerID, "childID": childServerID})
		if err != nil {
			return nil // parent not yet recorded; non-fatal
		}
	}
	return nil
}

func (a *ConversationAdapter) ThreadSize(conversationID string) (int, error) {
	ctx := context.Background()
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Conversation {id: $conversationID})-[:CONTAINS]->(m:Message)
		RETURN count(m) AS n`, map[string]any{"conversationID": conversationID})
	if err != nil {
		return 0, fmt.Errorf("graph: thread size: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, nil // no thread recorded yet
	}
	n, _ := record.Get("n")
	count, _ := n.(int64)
	return int(count), nil
}
