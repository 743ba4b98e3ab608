// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/sleep-keeper/migrations"
)

// Postgres runs all pending remote-store migrations against dsn.
func Postgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return Up(ctx, db, goose.DialectPostgres, "postgres")
}

// SQLite runs all pending on-device migrations on an open database.
func SQLite(ctx context.Context, db *sql.DB) error {
	return Up(ctx, db, goose.DialectSQLite3, "sqlite")
}

// Up runs the migrations found under dir of the embedded filesystem.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}
