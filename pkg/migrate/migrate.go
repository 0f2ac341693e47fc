package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/techstore/storefront-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// goose keeps its dialect and base filesystem in package globals.
var gooseMu sync.Mutex

// Source locates a set of goose migrations. A nil FS reads Dir from disk.
type Source struct {
	FS  fs.FS
	Dir string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() Source {
	return Source{FS: embedded, Dir: "migrations"}
}

// Disk returns the migrations under dir on the local filesystem.
func Disk(dir string) Source {
	return Source{Dir: dir}
}

// Dialect maps a document store driver to its goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case config.DocStorePostgres:
		return "postgres", nil
	case config.DocStoreSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("driver %q has no sql migrations", driver)
}

// Run executes a goose command such as up, down or status.
func Run(ctx context.Context, db *sql.DB, driver string, src Source, command string, args ...string) error {
	return withGoose(db, driver, src, func() error {
		if err := goose.RunContext(ctx, command, db, src.Dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateTo moves the schema up or down until target is the applied version.
func MigrateTo(ctx context.Context, db *sql.DB, driver string, src Source, target int64) error {
	return withGoose(db, driver, src, func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, src.Dir, target)
		case current > target:
			err = goose.DownToContext(ctx, db, src.Dir, target)
		}
		if err != nil {
			return fmt.Errorf("goose %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

// Version reports the latest applied migration.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	var version int64
	err := withGoose(db, driver, Source{}, func() error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, db)
		return err
	})
	return version, err
}

// ParseVersion accepts the YYYYMMDDHHMMSS prefix of a migration file.
func ParseVersion(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid version %q, expected YYYYMMDDHHMMSS", raw)
	}
	return v, nil
}

func withGoose(db *sql.DB, driver string, src Source, fn func() error) error {
	if db == nil {
		return errors.New("db is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)
	return fn()
}
