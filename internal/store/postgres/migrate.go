package postgres

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

func prepareGoose(log *slog.Logger) error {
	goose.SetBaseFS(migrations)
	if log == nil {
		goose.SetLogger(goose.NopLogger())
	} else {
		goose.SetLogger(gooseLogger{log: log})
	}
	return goose.SetDialect("postgres")
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(ctx context.Context, db *bun.DB, log *slog.Logger) error {
	if err := prepareGoose(log); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB, migrationsDir)
}

// MigrationStatus prints the applied state of each embedded migration.
func MigrationStatus(ctx context.Context, db *bun.DB, w io.Writer) error {
	log := slog.New(slog.NewTextHandler(w, nil))
	if err := prepareGoose(log); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB, migrationsDir)
}

type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error("migration failed", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info("migration", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, v...))))
}
