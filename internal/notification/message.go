// Package notification turns domain events into email messages and carries them to the mail transport
// through a bounded worker pool and a durable RabbitMQ queue.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessage(eventID, kind, from string, to []string, subject, body string) Message {
	return Message{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Kind:      kind,
		From:      from,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// Sender hands a message to the next hop: the broker on the API side, the mail transport in the worker.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Recipient struct {
	Name  string `db:"name"`
	Email string `db:"email"`
}
