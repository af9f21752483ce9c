// Package repositories opens the local state database and exposes the
// repositories built on it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eutype/internal/client/migrations"
	"github.com/dmitrijs2005/eutype/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eutype/internal/client/repositories/recent"
	"github.com/dmitrijs2005/eutype/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Recent   recent.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// SwitchUser records username as the last signed-in user. When it differs
// from the previous one, the recent documents list is cleared in the same
// transaction. It reports whether the user changed.
func (r *Repositories) SwitchUser(ctx context.Context, username string) (bool, error) {
	changed := false
	err := dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		prev, ok, err := meta.Get(ctx, metadata.KeyLastUser)
		if err != nil {
			return err
		}
		if ok && prev != username {
			changed = true
			if err := recent.NewSQLiteRepository(tx).Prune(ctx, 0); err != nil {
				return err
			}
		}
		return meta.Set(ctx, metadata.KeyLastUser, username)
	})
	if err != nil {
		return false, fmt.Errorf("switch user: %w", err)
	}
	return changed, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite database at dsn, applies migrations and
// builds the repositories. SQLite allows one writer; the pool is capped to a
// single connection so ":memory:" databases stay shared.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Recent:   recent.NewSQLiteRepository(db),
	}, nil
}
