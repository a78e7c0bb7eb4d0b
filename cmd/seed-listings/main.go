// Command seed-listings fills a search service with generated grocery
// listings, either through the bulk HTTP endpoint or as listing.upserted
// events on Kafka.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/rizzani/grovi-sub000/pkg/config"
	"github.com/rizzani/grovi-sub000/pkg/httpclient"
	pkgkafka "github.com/rizzani/grovi-sub000/pkg/kafka"
	"github.com/rizzani/grovi-sub000/pkg/logger"
)

type seedConfig struct {
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	Target       string   `env:"SEED_TARGET" envDefault:"http"`
	SearchURL    string   `env:"SEARCH_URL" envDefault:"http://localhost:8010"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Stores       int      `env:"SEED_STORES" envDefault:"3"`
	Products     int      `env:"SEED_PRODUCTS" envDefault:"500"`
	BatchSize    int      `env:"SEED_BATCH_SIZE" envDefault:"250"`
	Seed         int64    `env:"SEED_RANDOM" envDefault:"42"`
}

func (c *seedConfig) validate() error {
	if c.Target != "http" && c.Target != "kafka" {
		return fmt.Errorf("SEED_TARGET must be http or kafka, got %q", c.Target)
	}
	if c.Stores < 1 || c.Products < 1 {
		return fmt.Errorf("SEED_STORES and SEED_PRODUCTS must be positive")
	}
	if c.BatchSize < 1 || c.BatchSize > 1000 {
		return fmt.Errorf("SEED_BATCH_SIZE must be between 1 and 1000, got %d", c.BatchSize)
	}
	return nil
}

func main() {
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("seed-listings", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var out sink
	switch cfg.Target {
	case "kafka":
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
		defer producer.Close()
		out = &kafkaSink{producer: producer, logger: log}
	default:
		out = newHTTPSink(httpclient.New(httpclient.DefaultConfig()), cfg.SearchURL)
	}

	if err := run(ctx, cfg, out, log); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig, out sink, log *slog.Logger) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	listings := generateListings(rng, cfg.Stores, cfg.Products)

	log.Info("seeding listings",
		slog.String("target", cfg.Target),
		slog.Int("listings", len(listings)),
		slog.Int("batch_size", cfg.BatchSize),
	)

	sent := 0
	for i, batch := range batches(listings, cfg.BatchSize) {
		if err := out.Send(ctx, batch); err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		sent += len(batch)
		log.Info("batch sent", slog.Int("batch", i+1), slog.Int("sent", sent))
	}

	log.Info("seeding complete", slog.Int("listings", sent))
	return nil
}
