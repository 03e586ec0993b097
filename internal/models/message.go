package models

import "time"

// Message is a single immutable direct message between two users.
// The timestamp is assigned by the history store at persistence time.
type Message struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Push event types delivered over a user's websocket.
const (
	EventMessage = "message"
	EventJoined  = "joined"
	EventLeft    = "left"
)

// PushEvent is the envelope broadcast through websockets.
type PushEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	UserID  int      `json:"user_id,omitempty"`
}
