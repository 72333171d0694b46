package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/storebot/core/logger"

	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending up migration from ./migrations.
// The shop schema (categories, products, sections, orders, payments) is
// created entirely through these files.
func RunMigrations(cfg Config) error {
	dsn := cfg.URL()
	if err := WaitForPostgres(dsn, 30*time.Second); err != nil {
		logger.MIG.Error("db not ready",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.MIG.Error("cwd lookup failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("get working directory: %w", err)
	}
	dir := filepath.Join(cwd, "migrations")

	files := upMigrationNames(dir)
	logFilePreview("resolve", "migrations resolved", files,
		slog.String("path", dir))

	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(start))

	if upErr != nil && upErr != migrate.ErrNoChange {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer := fromVer
	applied := 0
	if upErr == nil {
		toVer, _, _ = m.Version()
		names := appliedBetween(files, uint64(fromVer), uint64(toVer))
		applied = len(names)
		if applied > 0 {
			logFilePreview("apply", "applied files", names)
		}
	}

	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", applied),
		slog.Duration("duration", took),
	)
	return nil
}

func logFilePreview(event, msg string, files []string, extra ...any) {
	preview, truncated := logger.SummarizeStrings(files, 6)
	args := append([]any{
		slog.String("event", event),
		slog.Int("files_total", len(files)),
	}, extra...)
	if preview != "" {
		args = append(args, slog.String("files_preview", preview))
	}
	if truncated {
		args = append(args, slog.Bool("files_truncated", true))
	}
	logger.MIG.Debug(msg, args...)
}

func upMigrationNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// appliedBetween picks the files whose numeric prefix falls in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		prefix, _, _ := strings.Cut(f, "_")
		v, _ := strconv.ParseUint(prefix, 10, 64)
		if v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
