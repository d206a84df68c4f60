package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/interfaces"
	"github.com/bobmcallan/raymonds/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendSurrealDB = "surrealdb"
)

// NewKeyValueStore creates the configured backend. Defaults to file.
func NewKeyValueStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (interfaces.KeyValueStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileStore(logger, config.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSurrealDB:
		return surrealdb.NewStore(ctx, logger, config)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, memory, surrealdb)", backend)
	}
}
