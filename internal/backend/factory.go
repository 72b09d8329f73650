// Package backend assembles a ledger from configuration: the storage backend,
// its instrumentation and the optional event publisher.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/jsonfile"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

// Type selects a storage backend.
type Type string

const (
	JSONBackend   Type = "json"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// IsValid reports whether t names a known backend.
func (t Type) IsValid() bool {
	switch t {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Result is an assembled ledger. Cleanup releases the store and the publisher.
type Result struct {
	Ledger  *service.Ledger
	Cleanup func() error
}

// Factory builds ledgers.
type Factory struct {
	logger *slog.Logger

	// setupLogging is set when no logger was supplied. Open then installs
	// the default logger at the configured level.
	setupLogging bool
}

// NewFactory creates a new backend factory. With a nil logger the factory
// configures the default slog logger from Config.LogLevel on Open.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		return &Factory{logger: slog.Default(), setupLogging: true}
	}
	return &Factory{logger: logger}
}

// Open builds a ledger for cfg. A publisher that cannot connect is logged
// and skipped; the ledger then runs without events.
func (f *Factory) Open(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if f.setupLogging {
		logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
		f.logger = slog.Default()
	}

	store, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}

	publisher := f.openPublisher(ctx, cfg)

	ledger := service.New(storage.InstrumentStore(store), service.WithPublisher(publisher))
	return &Result{
		Ledger:  ledger,
		Cleanup: ledger.Close,
	}, nil
}

func (f *Factory) openStore(cfg *config.Config) (storage.Store, error) {
	t := Type(cfg.Backend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Backend)
	}

	switch t {
	case SQLiteBackend:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLitePath)
		return store, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		store, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JSON store: %w", err)
		}
		f.logger.Info("Initialized JSON backend", "data_directory", cfg.DataDir)
		return store, nil
	}
}

func (f *Factory) openPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP publisher, continuing without events", "error", err)
		return events.Nop{}
	}
	f.logger.InfoContext(ctx, "Initialized AMQP publisher", "exchange", cfg.AMQPExchange)
	return p
}
