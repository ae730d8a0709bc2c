package mailstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"easyncd/core/domain"
	"easyncd/core/port/out"
)

const bodiesCollection = "mail_bodies"

// Store implements out.Store. Item identity, folder placement, read-state
// and ordering live in Postgres (items); body content and raw MIME live in
// Mongo (mail_bodies), following the teacher's metadata/body split.
type Store struct {
	pool   *pgxpool.Pool
	bodies *mongo.Collection
}

// NewStore builds a Store. db may be nil (no MONGO_URL configured), in
// which case body content (plain/HTML/MIME) is always empty — acceptable
// for deployments that only exercise metadata-level commands.
func NewStore(pool *pgxpool.Pool, db *mongo.Database) *Store {
	s := &Store{pool: pool}
	if db != nil {
		s.bodies = db.Collection(bodiesCollection)
	}
	return s
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.bodies == nil {
		return nil
	}
	_, err := s.bodies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "server_id", Value: 1}},
	})
	return err
}

type bodyDocument struct {
	ServerID  string `bson:"server_id"`
	Plain     string `bson:"plain,omitempty"`
	HTML      string `bson:"html,omitempty"`
	MIME      []byte `bson:"mime,omitempty"`
}

func (s *Store) GetUser(ctx context.Context, login string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `SELECT id, email, display_name FROM users WHERE email = $1`, login).
		Scan(&u.ID, &u.Email, &u.Display)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, out.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListItems(ctx context.Context, userID int64, collectionID string, cursor, limit int) ([]domain.Item, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM items WHERE user_id = $1 AND collection_id = $2`,
		userID, collectionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT server_id, subject, sender, external_sender, recipients, received_at, is_read, conversation_id
		FROM items WHERE user_id = $1 AND collection_id = $2
		ORDER BY received_at ASC, server_id ASC
		OFFSET $3 LIMIT $4`, userID, collectionID, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var receivedAt time.Time
		if err := rows.Scan(&it.ServerID, &it.Subject, &it.From, &it.ExternalSender, &it.To, &receivedAt, &it.Read, &it.ConversationID); err != nil {
			return nil, 0, err
		}
		it.CollectionID = collectionID
		it.ReceivedAt = receivedAt.Unix()
		s.hydrateBody(ctx, &it)
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (s *Store) hydrateBody(ctx context.Context, it *domain.Item) {
	if s.bodies == nil {
		return
	}
	var doc bodyDocument
	err := s.bodies.FindOne(ctx, bson.M{"server_id": it.ServerID}).Decode(&doc)
	if err != nil {
		return // absent body is not fatal; rendering falls back to empty content
	}
	it.BodyPlain = doc.Plain
	it.BodyHTML = doc.HTML
	it.MIMEBytes = doc.MIME
}

func (s *Store) GetItem(ctx context.Context, userID int64, collectionID, serverID string) (*domain.Item, error) {
	var it domain.Item
	var receivedAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT server_id, subject, sender, external_sender, recipients, received_at, is_read, conversation_id
		FROM items WHERE user_id = $1 AND collection_id = $2 AND server_id = $3`,
		userID, collectionID, serverID).
		Scan(&it.ServerID, &it.Subject, &it.From, &it.ExternalSender, &it.To, &receivedAt, &it.Read, &it.ConversationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, out.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	it.CollectionID = collectionID
	it.ReceivedAt = receivedAt.Unix()
	s.hydrateBody(ctx, &it)
	return &it, nil
}

func (s *Store) SetRead(ctx context.Context, userID int64, serverID string, read bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE items SET is_read = $1 WHERE user_id = $2 AND server_id = $3`, read, userID, serverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return out.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, userID int64, serverID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM items WHERE user_id = $1 AND server_id = $2`, userID, serverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return out.ErrNotFound
	}
	if s.bodies != nil {
		_, _ = s.bodies.DeleteOne(ctx, bson.M{"server_id": serverID})
	}
	return nil
}

func (s *Store) InsertItem(ctx context.Context, userID int64, collectionID string, item domain.Item) (string, error) {
	var serverID string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO items (user_id, collection_id, subject, sender, external_sender, recipients, received_at, is_read, conversation_id)
		VALUES ($1, $2, $3, $4, $5, $6, now(), $7, $8)
		RETURNING server_id`,
		userID, collectionID, item.Subject, item.From, item.ExternalSender, item.To, item.Read, item.ConversationID).
		Scan(&serverID)
	if err != nil {
		return "", err
	}

	if s.bodies != nil {
		doc := bodyDocument{ServerID: serverID, Plain: item.BodyPlain, HTML: item.BodyHTML, MIME: item.MIMEBytes}
		if _, err := s.bodies.InsertOne(ctx, doc); err != nil {
			return "", err
		}
	}
	return serverID, nil
}
