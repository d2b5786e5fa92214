package backend

import (
	"context"
	"fmt"
	"log/slog"

	"controle/internal/amqp"
	"controle/internal/config"
	"controle/internal/events"
	"controle/internal/events/kafka"
	"controle/internal/ledger/csvfile"
	"controle/internal/ledger/memory"
	"controle/internal/ledger/sheets"
	"controle/internal/storage"
)

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore opens the store described by cfg.
func (f *Factory) CreateStore(ctx context.Context, cfg StoreConfig) (*StoreResult, error) {
	switch cfg.Type {
	case CSVBackend:
		store := csvfile.New(cfg.LedgerFile)
		f.logger.Info("Initialized CSV backend", "path", cfg.LedgerFile)
		return &StoreResult{Store: store, Cleanup: noCleanup}, nil

	case MemoryBackend:
		store := memory.NewFromFile(cfg.LedgerFile)
		f.logger.Info("Initialized memory backend", "seed_file", cfg.LedgerFile)
		return &StoreResult{Store: store, Cleanup: noCleanup}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &StoreResult{Store: repo, Cleanup: repo.Close}, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return &StoreResult{Store: repo, Cleanup: repo.Close}, nil

	case SheetsBackend:
		cli, err := sheets.New(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", cfg.Sheets.SheetName)
		return &StoreResult{Store: cli, Cleanup: noCleanup}, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
}

// CreatePublisher returns the configured publisher. An unreachable AMQP
// broker is not fatal: the app keeps recording entries without events.
func (f *Factory) CreatePublisher(cfg *config.Config) (events.Publisher, CleanupFunc, error) {
	switch cfg.EventsBackend {
	case "", "none":
		return events.Nop{}, noCleanup, nil

	case "amqp":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			return events.Nop{}, noCleanup, nil
		}
		f.logger.Info("Initialized AMQP publisher",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		return client, client.Close, nil

	case "kafka":
		pub := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		f.logger.Info("Initialized Kafka publisher", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
		return pub, pub.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported events backend: %s", cfg.EventsBackend)
}

// CreateConsumer returns the consumer the worker reads from.
func (f *Factory) CreateConsumer(cfg *config.Config) (Consumer, CleanupFunc, error) {
	switch cfg.EventsBackend {
	case "amqp":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Info("Initialized AMQP consumer", "queue", cfg.AMQPQueue)
		return client, client.Close, nil

	case "kafka":
		c := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		f.logger.Info("Initialized Kafka consumer", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
		return c, c.Close, nil
	}
	return nil, nil, fmt.Errorf("events backend %q cannot be consumed", cfg.EventsBackend)
}
