package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"dm-service/internal/models"
)

// MessageRepository is the durable history store contract: append a record,
// read an ordered conversation range.
type MessageRepository interface {
	Append(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error)
	Range(ctx context.Context, userA int, userB int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a message. The timestamp comes from the database clock, so
// ordering within a conversation follows append order.
func (r *MessageRepo) Append(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, body) VALUES ($1, $2, $3) RETURNING id, sender_id, receiver_id, body, created_at`, senderID, receiverID, body).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.CreatedAt)
	return msg, err
}

// Range returns every message exchanged between the two users in either
// direction, ascending by timestamp with the insert id as tie-break. The
// pair is normalized with LEAST/GREATEST so Range(a, b) == Range(b, a).
func (r *MessageRepo) Range(ctx context.Context, userA int, userB int) ([]models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, body, created_at
        FROM messages
        WHERE LEAST(sender_id, receiver_id) = LEAST($1::int, $2::int)
        AND GREATEST(sender_id, receiver_id) = GREATEST($1::int, $2::int)
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB)
	return msgs, err
}
