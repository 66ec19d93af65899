package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ErrNotFound is returned when no credential record exists for an id.
var ErrNotFound = errors.New("store: user not found")

// User is one credential record. At most one row exists per Google subject
// id; the upsert is keyed on it.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	GoogleID     string    `bun:"google_id,notnull,unique"`
	Email        string    `bun:"email,notnull"`
	Name         string    `bun:"name"`
	AccessToken  string    `bun:"access_token,notnull"`
	RefreshToken string    `bun:"refresh_token"`
	TokenExpiry  time.Time `bun:"token_expiry,nullzero"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// UpsertInput carries the fields written on a successful authorization.
type UpsertInput struct {
	GoogleID     string
	Email        string
	Name         string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
}

// CredentialStore persists user credential records in SQLite via bun.
// Single-row writes only; concurrent refreshes for the same user are
// last-write-wins.
type CredentialStore struct {
	db *bun.DB
}

// Open opens (creating if necessary) the SQLite database at path and wraps
// it in a CredentialStore.
func Open(path string) (*CredentialStore, error) {
	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}
	return NewWithDB(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// NewWithDB wraps an existing bun handle. Used by tests.
func NewWithDB(db *bun.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Init creates the users table when it does not exist yet.
func (s *CredentialStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: failed to create users table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *CredentialStore) Close() error {
	return s.db.Close()
}

// Upsert creates or updates the record for in.GoogleID, merging token
// fields: an empty incoming refresh token preserves the stored one, since
// Google only reissues refresh tokens on consent.
func (s *CredentialStore) Upsert(ctx context.Context, in UpsertInput) (*User, error) {
	if in.GoogleID == "" {
		return nil, fmt.Errorf("store: google id is required")
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		GoogleID:     in.GoogleID,
		Email:        in.Email,
		Name:         in.Name,
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		TokenExpiry:  in.TokenExpiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.db.NewInsert().
		Model(user).
		On("CONFLICT (google_id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("name = EXCLUDED.name").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = CASE WHEN EXCLUDED.refresh_token <> '' THEN EXCLUDED.refresh_token ELSE u.refresh_token END").
		Set("token_expiry = EXCLUDED.token_expiry").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("store: failed to upsert user: %w", err)
	}

	return s.GetByGoogleID(ctx, in.GoogleID)
}

// Get returns the record with the given local id.
func (s *CredentialStore) Get(ctx context.Context, id string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to load user %q: %w", id, err)
	}
	return user, nil
}

// GetByGoogleID returns the record keyed by the provider's subject id.
func (s *CredentialStore) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().Model(user).Where("u.google_id = ?", googleID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to load user by google id: %w", err)
	}
	return user, nil
}

// UpdateAccessToken stores a refreshed access token. Only the access token
// and its expiry change; a failed refresh never reaches this method, so the
// previously stored pair stays intact on failure.
func (s *CredentialStore) UpdateAccessToken(ctx context.Context, id, accessToken string, expiry time.Time) (*User, error) {
	res, err := s.db.NewUpdate().
		Model((*User)(nil)).
		Set("access_token = ?", accessToken).
		Set("token_expiry = ?", expiry).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: failed to update access token: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}
