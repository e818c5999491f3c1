// Package sqlite implementa accounts.Repository sobre SQLite (modernc, sin cgo).
// Pensado para desarrollo e instalaciones de una sola instancia.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/store"
	"github.com/dropDatabas3/hellojohn-accounts/migrations"
)

// Repo es el repositorio de cuentas en SQLite.
type Repo struct {
	db    *sql.DB
	codec store.Codec
	now   func() time.Time
}

// Open abre la base en path (":memory:" para tests).
func Open(ctx context.Context, path string, codec store.Codec) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path is required")
	}
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Una sola conexión: serializa escrituras y mantiene viva la base :memory:.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repo{db: db, codec: codec, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate aplica las migraciones embebidas.
func (r *Repo) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	return store.NewMigrator(migrations.FS, migrations.Dir("sqlite"), "sqlite").Run(ctx, r.db)
}

const selectCols = `id, type, external_id, auth_data, profile_data, created_at, updated_at`

func (r *Repo) scan(row *sql.Row) (*accounts.Account, error) {
	var (
		a       accounts.Account
		auth    []byte
		profile string
	)
	err := row.Scan(&a.ID, &a.Type, &a.ExternalID, &auth, &profile, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.AuthData, err = r.codec.DecodeAuth(auth); err != nil {
		return nil, err
	}
	if a.ProfileData, err = r.codec.DecodeProfile([]byte(profile)); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*accounts.Account, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM accounts WHERE id = ?`, id))
}

func (r *Repo) GetByExternalID(ctx context.Context, accountType, externalID string) (*accounts.Account, error) {
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM accounts WHERE type = ? AND external_id = ?`, accountType, externalID))
}

// Upsert busca por (type, external_id) y actualiza o inserta dentro de una transacción.
func (r *Repo) Upsert(ctx context.Context, a *accounts.Account) (*accounts.Account, bool, error) {
	auth, err := r.codec.EncodeAuth(a.AuthData)
	if err != nil {
		return nil, false, err
	}
	profile, err := r.codec.EncodeProfile(a.ProfileData)
	if err != nil {
		return nil, false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now()
	out := *a
	out.UpdatedAt = now

	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM accounts WHERE type = ? AND external_id = ?`, a.Type, a.ExternalID).
		Scan(&out.ID, &out.CreatedAt)
	created := errors.Is(err, sql.ErrNoRows)
	switch {
	case created:
		out.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (id, type, external_id, auth_data, profile_data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			out.ID, out.Type, out.ExternalID, auth, string(profile), now, now)
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET auth_data = ?, profile_data = ?, updated_at = ? WHERE id = ?`,
			auth, string(profile), now, out.ID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: upsert account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("sqlite: commit: %w", err)
	}
	return &out, created, nil
}

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) Close() error { return r.db.Close() }
