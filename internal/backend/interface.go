package backend

import (
	"context"

	"cruscotto/internal/charts"
	"cruscotto/internal/rows"
)

// Backend pairs the chart metadata store with the row source serving
// its charts.
type Backend struct {
	Store  charts.Store
	Source rows.Source
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Query API specific
	QueryAPIURL string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Chart metadata directory (memory, queryapi and sheets backends)
	ChartsDir string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	QueryAPIBackend BackendType = "queryapi"
	SheetsBackend   BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, QueryAPIBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
