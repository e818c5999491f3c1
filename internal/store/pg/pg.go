// Package pg implementa accounts.Repository sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/store"
	"github.com/dropDatabas3/hellojohn-accounts/migrations"
)

// Config configuración del pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// Repo es el repositorio de cuentas en Postgres.
type Repo struct {
	pool  *pgxpool.Pool
	codec store.Codec
}

// Open crea el pool y verifica la conexión.
func Open(ctx context.Context, cfg Config, codec store.Codec) (*Repo, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Repo{pool: pool, codec: codec}, nil
}

// Migrate aplica las migraciones embebidas.
func (r *Repo) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()
	return store.NewMigrator(migrations.FS, migrations.Dir("postgres"), "postgres").Run(ctx, db)
}

const selectCols = `id::text, type, external_id, auth_data, profile_data, created_at, updated_at`

func (r *Repo) scan(row pgx.Row) (*accounts.Account, error) {
	var (
		a             accounts.Account
		auth, profile []byte
	)
	err := row.Scan(&a.ID, &a.Type, &a.ExternalID, &auth, &profile, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.AuthData, err = r.codec.DecodeAuth(auth); err != nil {
		return nil, err
	}
	if a.ProfileData, err = r.codec.DecodeProfile(profile); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*accounts.Account, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+selectCols+` FROM accounts WHERE id::text = $1`, id))
}

func (r *Repo) GetByExternalID(ctx context.Context, accountType, externalID string) (*accounts.Account, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+selectCols+` FROM accounts WHERE type = $1 AND external_id = $2`,
		accountType, externalID))
}

// Upsert usa ON CONFLICT; xmax = 0 distingue insert de update.
func (r *Repo) Upsert(ctx context.Context, a *accounts.Account) (*accounts.Account, bool, error) {
	auth, err := r.codec.EncodeAuth(a.AuthData)
	if err != nil {
		return nil, false, err
	}
	profile, err := r.codec.EncodeProfile(a.ProfileData)
	if err != nil {
		return nil, false, err
	}

	const query = `
		INSERT INTO accounts (id, type, external_id, auth_data, profile_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (type, external_id) DO UPDATE
		SET auth_data = EXCLUDED.auth_data, profile_data = EXCLUDED.profile_data, updated_at = NOW()
		RETURNING id::text, created_at, updated_at, (xmax = 0) AS inserted
	`
	out := *a
	var created bool
	if err := r.pool.QueryRow(ctx, query, a.ID, a.Type, a.ExternalID, auth, profile).
		Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt, &created); err != nil {
		return nil, false, fmt.Errorf("pg: upsert account: %w", err)
	}
	return &out, created, nil
}

func (r *Repo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}
