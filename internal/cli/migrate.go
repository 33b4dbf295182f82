package cli

import (
	"context"
	"database/sql"
	"log"

	"simulado-service/internal/config"
	pgmigrations "simulado-service/internal/infra/postgres/migrations"
	sqlitemigrations "simulado-service/internal/infra/sqlite/migrations"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
}

// runMigrationsWithConfig migrates the SQLite user store and, when a Postgres
// URL is configured, the simulados content table as well.
func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if err := migrateSQLite(ctx, userDBPath(cfg)); err != nil {
		return err
	}
	if cfg.Postgres.URL != "" {
		if err := migratePostgres(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
	}
	return nil
}

// MigrateUserStore applies the user-store migrations over an already open
// handle. The server uses this at startup so the tables exist before the
// first request.
func MigrateUserStore(ctx context.Context, sqldb *sql.DB) error {
	db := bun.NewDB(sqldb, sqlitedialect.New())
	migrator := migrate.NewMigrator(db, sqlitemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	return nil
}

func migrateSQLite(ctx context.Context, path string) error {
	sqldb, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := MigrateUserStore(ctx, sqldb); err != nil {
		return err
	}
	log.Printf("sqlite migrations applied (%s)", path)
	return nil
}

func migratePostgres(ctx context.Context, url string) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("postgres migrations applied")
	return nil
}

func userDBPath(cfg config.Config) string {
	if cfg.SQLite.Path != "" {
		return cfg.SQLite.Path
	}
	return "user_data/app.db"
}
