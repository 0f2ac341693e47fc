package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	"github.com/techstore/storefront-backend/pkg/logger"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 10 * time.Second
)

// ProductData is the product summary carried by catalog events.
type ProductData struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Featured  bool    `json:"featured,omitempty"`
	Images    int     `json:"images,omitempty"`
}

// Envelope is the JSON body of every published catalog event.
type Envelope struct {
	Version    int                    `json:"version"`
	EventID    string                 `json:"eventId"`
	EventType  enums.CatalogEventType `json:"eventType"`
	OccurredAt time.Time              `json:"occurredAt"`
	ActorID    string                 `json:"actorId,omitempty"`
	Data       ProductData            `json:"data"`
}

// CatalogEvent describes one admin mutation of the catalog.
type CatalogEvent struct {
	Type    enums.CatalogEventType
	Product models.Product
	ActorID string
}

// Publisher announces catalog mutations.
type Publisher interface {
	PublishCatalog(ctx context.Context, event CatalogEvent) error
}

// Nop drops every event. It is used when no topic is configured.
type Nop struct{}

func (Nop) PublishCatalog(context.Context, CatalogEvent) error { return nil }

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

// PubSubPublisher writes catalog events to a Pub/Sub topic and waits for the
// server acknowledgement.
type PubSubPublisher struct {
	topic   topicPublisher
	logg    *logger.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewPubSubPublisher(p *gcppubsub.Publisher, logg *logger.Logger) (*PubSubPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher is required")
	}
	return newPublisher(&gcpPublisher{Publisher: p}, logg), nil
}

func newPublisher(topic topicPublisher, logg *logger.Logger) *PubSubPublisher {
	return &PubSubPublisher{
		topic:   topic,
		logg:    logg,
		now:     time.Now,
		timeout: defaultPublishTimeout,
	}
}

func (p *PubSubPublisher) PublishCatalog(ctx context.Context, event CatalogEvent) error {
	if !event.Type.IsValid() {
		return fmt.Errorf("invalid catalog event type %q", event.Type)
	}
	env := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  event.Type,
		OccurredAt: p.now().UTC(),
		ActorID:    event.ActorID,
		Data: ProductData{
			ProductID: event.Product.ID,
			Name:      event.Product.Name,
			Category:  event.Product.Category,
			Price:     event.Product.Price,
			Featured:  event.Product.Featured,
			Images:    len(event.Product.Images),
		},
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode catalog event: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":    env.EventID,
			"event_type":  string(env.EventType),
			"product_id":  env.Data.ProductID,
			"occurred_at": env.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	serverID, err := p.topic.Publish(publishCtx, msg).Get(publishCtx)
	if err != nil {
		return fmt.Errorf("publish catalog event: %w", err)
	}
	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"event_id":   env.EventID,
			"event_type": string(env.EventType),
			"message_id": serverID,
		})
		p.logg.Info(logCtx, "catalog event published")
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
