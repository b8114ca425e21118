// Package pg implements the profile repository on PostgreSQL.
package pg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/profile"
	migrations "github.com/plantit/plantit/migrations/postgres"
)

// Repo is a PostgreSQL-backed profile.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a repo on an existing pool.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Connect opens a pool for dsn and pings it.
func Connect(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

// Close releases the pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping reports whether the database is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema applies the embedded schema migrations in lexical order.
// Statements are idempotent, so re-running on boot is safe.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("pg: read migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: apply migration %s: %w", name, classify(err))
		}
	}
	return nil
}

// Upsert implements profile.Repository.
func (r *Repo) Upsert(ctx context.Context, rec types.ProfileRecord) error {
	const query = `
		INSERT INTO profiles (user_id, email, avatar_url, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET email = $2, avatar_url = NULLIF($3, ''), updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, rec.UserID, rec.Email, rec.AvatarURL); err != nil {
		return classify(err)
	}
	return nil
}

// Get implements profile.Repository.
func (r *Repo) Get(ctx context.Context, userID string) (*types.ProfileRecord, error) {
	const query = `
		SELECT user_id, email, COALESCE(avatar_url, '') FROM profiles WHERE user_id = $1
	`
	var rec types.ProfileRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.Email, &rec.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &rec, nil
}

// classify maps pgx errors to the closed PersistError set.
func classify(err error) *types.PersistError {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return types.NewPersistError(types.PersistUnreachable, "database unreachable", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01", "42501": // invalid auth / insufficient privilege
			return types.NewPersistError(types.PersistPermissionDenied, pgErr.Message, err)
		case "57P01", "57P02", "57P03", "08000", "08003", "08006": // shutdown / connection failures
			return types.NewPersistError(types.PersistUnreachable, pgErr.Message, err)
		}
		return types.NewPersistError(types.PersistUnknown, pgErr.Message, err)
	}

	return types.NewPersistError(types.PersistUnknown, err.Error(), err)
}
