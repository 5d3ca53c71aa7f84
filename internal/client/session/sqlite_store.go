package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/repositories/metadata"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/cryptox"
	"github.com/ajenda/ajenda/internal/dbx"
)

// SQLiteStore keeps the session in the metadata table.
type SQLiteStore struct {
	db     *sql.DB
	repo   metadata.Repository
	sealer *cryptox.Sealer
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB, sealer *cryptox.Sealer) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		sealer: sealer,
	}
}

// Open initialises the database at dsn and seals values under a fresh
// in-memory key.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db, cryptox.NewEphemeralSealer()), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return s.repo.Remove(ctx, common.TokenStorageKey)
	}
	return s.put(ctx, common.TokenStorageKey, []byte(token))
}

func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	v, err := s.get(ctx, common.TokenStorageKey)
	if err != nil || v == nil {
		return "", err
	}
	return string(v), nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, user *models.Profile) error {
	if user == nil {
		return s.repo.Remove(ctx, common.UserStorageKey)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.put(ctx, common.UserStorageKey, data)
}

func (s *SQLiteStore) User(ctx context.Context) (*models.Profile, error) {
	v, err := s.get(ctx, common.UserStorageKey)
	if err != nil || v == nil {
		return nil, err
	}
	var p models.Profile
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &p, nil
}

// Clear drops token and user in a single transaction.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Remove(ctx, common.TokenStorageKey, common.UserStorageKey)
	})
}

func (s *SQLiteStore) put(ctx context.Context, key string, plain []byte) error {
	return s.repo.Put(ctx, key, s.sealer.Seal(plain, []byte(key)))
}

// get returns nil for values sealed by another process.
func (s *SQLiteStore) get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.repo.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := s.sealer.Open(sealed, []byte(key))
	if errors.Is(err, cryptox.ErrOpen) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plain, nil
}
