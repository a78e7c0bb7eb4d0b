// Package event applies listing change events from Kafka to the catalog.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/service"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	pkgkafka "github.com/rizzani/grovi-sub000/pkg/kafka"
	"github.com/rizzani/grovi-sub000/pkg/validator"
)

// Listing event types and the topics that carry them.
const (
	TypeListingUpserted = "listing.upserted"
	TypeListingDeleted  = "listing.deleted"
)

var (
	TopicListingUpserted = pkgkafka.Topic("listing", "upserted")
	TopicListingDeleted  = pkgkafka.Topic("listing", "deleted")
)

// Topics lists every topic the consumer handles.
func Topics() []string {
	return []string{TopicListingUpserted, TopicListingDeleted}
}

// ListingDeletedData is the payload of a listing.deleted event.
type ListingDeletedData struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id"`
}

// ListingWriter is the part of the catalog service the consumer drives.
type ListingWriter interface {
	IndexListing(ctx context.Context, in *service.ListingInput) (*domain.CandidateListing, error)
	DeleteListing(ctx context.Context, key string) error
}

// Consumer handles listing events.
type Consumer struct {
	catalog ListingWriter
	logger  *slog.Logger
}

// NewConsumer creates a listing event consumer.
func NewConsumer(catalog ListingWriter, logger *slog.Logger) *Consumer {
	return &Consumer{catalog: catalog, logger: logger}
}

// Handle applies one event. Payloads that can never succeed are returned as
// permanent errors so the message is dead-lettered without retries.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TypeListingUpserted:
		return c.handleUpserted(ctx, event)
	case TypeListingDeleted:
		return c.handleDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var in service.ListingInput
	if err := event.UnmarshalData(&in); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("unmarshal %s data: %w", TypeListingUpserted, err))
	}

	listing, err := c.catalog.IndexListing(ctx, &in)
	if err != nil {
		return classify(fmt.Errorf("index listing from event %s: %w", event.EventID, err))
	}

	c.logger.InfoContext(ctx, "indexed listing from upserted event",
		slog.String("listing", listing.Key()),
		slog.String("event_id", event.EventID),
	)
	return nil
}

func (c *Consumer) handleDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ListingDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("unmarshal %s data: %w", TypeListingDeleted, err))
	}

	key := domain.ListingKey(data.StoreID, data.ProductID)
	if err := c.catalog.DeleteListing(ctx, key); err != nil {
		return classify(fmt.Errorf("delete listing from event %s: %w", event.EventID, err))
	}

	c.logger.InfoContext(ctx, "deleted listing from deleted event",
		slog.String("listing", key),
		slog.String("event_id", event.EventID),
	)
	return nil
}

// classify marks invalid payloads and read-only backends as permanent.
func classify(err error) error {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) ||
		errors.Is(err, apperrors.ErrInvalidInput) ||
		errors.Is(err, apperrors.ErrNotSupported) {
		return pkgkafka.Permanent(err)
	}
	return err
}
