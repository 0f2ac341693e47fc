package migrate

import (
	"context"
	"fmt"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db"
	"github.com/techstore/storefront-backend/pkg/logger"
)

// MaybeAutoRun applies the embedded migrations at boot. It does nothing unless
// the document store is SQL and auto-migrate is on or the app runs in dev.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	switch {
	case client == nil, !cfg.DocStore.IsSQL():
		return nil
	case !cfg.DocStore.AutoMigrate && !cfg.App.IsDev():
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	if err := Run(ctx, sqlDB, client.Driver(), Embedded(), "up"); err != nil {
		return err
	}

	version, err := Version(ctx, sqlDB, client.Driver())
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"driver":  client.Driver(),
		"version": version,
	}), "schema migrated")
	return nil
}
