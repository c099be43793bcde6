package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EntryCreatedEvent is the wire form of a committed journal entry.
type EntryCreatedEvent struct {
	EntryID     int64     `json:"entry_id"`
	AccountID   int       `json:"account_id"`
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Balance     int64     `json:"balance"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher implements ports.EventPublisher over NATS. Publishing is
// fire-and-forget: the apply has already committed when events go out.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS and returns a journal event publisher.
func NewPublisher(url, subject string, log zerolog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	log.Info().Str("url", url).Str("subject", subject).Msg("NATS publisher connected")

	return &Publisher{conn: conn, subject: subject}, nil
}

// PublishEntryCreated emits one event for a committed journal entry.
func (p *Publisher) PublishEntryCreated(_ context.Context, entry *domain.JournalEntry, balance int64) error {
	event := EntryCreatedEvent{
		EntryID:     entry.ID,
		AccountID:   entry.AccountID,
		Amount:      entry.Amount,
		Kind:        string(entry.Kind),
		Description: entry.Description,
		Balance:     balance,
		OccurredAt:  entry.OccurredAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal entry event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish entry event: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
