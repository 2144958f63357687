package backend

import (
	"context"
	"fmt"
	"log/slog"

	"cruscotto/internal/charts"
	"cruscotto/internal/charts/memory"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
	"cruscotto/internal/rows/queryapi"
	"cruscotto/internal/rows/sheet"
	"cruscotto/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case QueryAPIBackend:
		return f.createQueryAPIBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: Backend{Store: repo, Source: repo},
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createQueryAPIBackend(config Config) (*BackendResult, error) {
	store := f.chartStore(config)
	client := queryapi.NewClient(config.QueryAPIURL)

	f.logger.Info("Initialized query API backend", "url", config.QueryAPIURL)

	return &BackendResult{
		Backend: Backend{Store: store, Source: client},
		Cleanup: nil, // No cleanup needed for queryapi backend
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	src, err := sheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets source: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &BackendResult{
		Backend: Backend{Store: f.chartStore(config), Source: src},
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := f.chartStore(config)

	// The memory backend serves chart metadata only; rows come from
	// the query API when one is configured.
	var source rows.Source = emptySource{}
	if config.QueryAPIURL != "" {
		source = queryapi.NewClient(config.QueryAPIURL)
	}

	f.logger.Info("Initialized memory backend",
		"charts_dir", config.ChartsDir,
		"query_api_enabled", config.QueryAPIURL != "")

	return &BackendResult{
		Backend: Backend{Store: store, Source: source},
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

func (f *DefaultFactory) chartStore(config Config) *memory.Store {
	dir := config.ChartsDir
	if dir == "" {
		dir = "data" // Default directory
	}
	return memory.NewFromFiles(dir)
}

// emptySource backs the memory backend when no query API is configured.
type emptySource struct{}

func (emptySource) FetchRows(context.Context, charts.Chart, core.DateRange) ([]core.RawPoint, error) {
	return nil, nil
}
