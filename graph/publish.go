package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultIngestSubject is the JetStream subject entity messages are
// published to for incremental persistence.
const DefaultIngestSubject = "graph.ingest.entity"

// EntityMessage is the wire format for one processed entity: its
// identifier and every statement generated from its page.
type EntityMessage struct {
	ID        string    `json:"id"`
	Triples   []Triple  `json:"triples"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher streams per-entity triple batches to JetStream so a
// downstream ingester can persist them while the build is still
// running. A nil Publisher is valid and publishes nothing.
type Publisher struct {
	js      jetstream.JetStream
	subject string
}

// NewPublisher wraps a NATS connection. A nil connection yields a nil
// publisher, which callers can use unconditionally (graceful
// degradation when streaming persistence is not configured).
func NewPublisher(nc *nats.Conn, subject string) (*Publisher, error) {
	if nc == nil {
		return nil, nil
	}
	if subject == "" {
		subject = DefaultIngestSubject
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	return &Publisher{js: js, subject: subject}, nil
}

// PublishEntity sends one entity's statements.
func (p *Publisher) PublishEntity(ctx context.Context, entityID string, triples []Triple) error {
	if p == nil {
		return nil
	}
	msg := EntityMessage{ID: entityID, Triples: triples, UpdatedAt: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal entity message: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish entity %s: %w", entityID, err)
	}
	return nil
}
