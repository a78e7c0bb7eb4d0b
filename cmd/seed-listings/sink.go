package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rizzani/grovi-sub000/internal/event"
	"github.com/rizzani/grovi-sub000/internal/service"
	"github.com/rizzani/grovi-sub000/pkg/httpclient"
	pkgkafka "github.com/rizzani/grovi-sub000/pkg/kafka"
)

// sink delivers one batch of listings to the search service.
type sink interface {
	Send(ctx context.Context, batch []service.ListingInput) error
}

// httpSink posts batches to the bulk listing endpoint.
type httpSink struct {
	client  *httpclient.Client
	baseURL string
}

func newHTTPSink(client *httpclient.Client, baseURL string) *httpSink {
	return &httpSink{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *httpSink) Send(ctx context.Context, batch []service.ListingInput) error {
	body, err := json.Marshal(service.BulkListingInput{Listings: batch})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/api/v1/listings/bulk", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "search")
	}
	return nil
}

// publisher is the part of *pkgkafka.Producer the kafka sink uses.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// kafkaSink publishes one listing.upserted event per listing.
type kafkaSink struct {
	producer publisher
	logger   *slog.Logger
}

func (s *kafkaSink) Send(ctx context.Context, batch []service.ListingInput) error {
	for i := range batch {
		l := batch[i].Listing()
		evt, err := pkgkafka.NewEvent(event.TypeListingUpserted, l.Key(), "listing", "seed-listings", batch[i])
		if err != nil {
			return err
		}
		if err := s.producer.Publish(ctx, event.TopicListingUpserted, evt); err != nil {
			return fmt.Errorf("publish %s: %w", l.Key(), err)
		}
	}
	s.logger.DebugContext(ctx, "batch published", slog.Int("events", len(batch)))
	return nil
}
