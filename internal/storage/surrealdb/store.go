// Package surrealdb implements durable client storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/interfaces"
)

const table = "client_kv"

// Store implements interfaces.KeyValueStore on the client_kv table.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

type kvRecord struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStore connects, signs in and selects the namespace and database.
func NewStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (*Store, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("surrealdb address is required")
	}

	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewStoreWithDB(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB client storage initialized")

	return s, nil
}

// NewStoreWithDB wraps an already connected database and defines the table.
func NewStoreWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", table, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// recordID sanitises dots, slashes and dashes for safe record IDs.
func recordID(key string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(table, strings.NewReplacer(".", "_", "/", "_", "-", "_").Replace(key))
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	rec, err := surrealdb.Select[kvRecord](ctx, s.db, recordID(key))
	if err != nil {
		if isNotFoundError(err) {
			return "", interfaces.ErrNotFound
		}
		return "", fmt.Errorf("failed to select %s: %w", key, err)
	}
	if rec == nil {
		return "", interfaces.ErrNotFound
	}
	return rec.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	rid := recordID(key)
	sql := "UPSERT type::record('client_kv', $id) CONTENT $kv"
	vars := map[string]any{
		"id": rid.ID,
		"kv": kvRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
	}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set %s after retries: %w", key, err)
		}
		s.logger.Debug().Err(err).Str("key", key).Int("attempt", attempt).Msg("Retrying client KV write")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := surrealdb.Delete[kvRecord](ctx, s.db, recordID(key)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

var _ interfaces.KeyValueStore = (*Store)(nil)
