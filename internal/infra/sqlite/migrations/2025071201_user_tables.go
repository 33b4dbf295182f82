package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_user_tables.sql
var userTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(userTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS theme;
				DROP TABLE IF EXISTS progress;
				DROP TABLE IF EXISTS incorrect_answers;
				DROP TABLE IF EXISTS bookmarks;
			`)
			return err
		},
	)
}
