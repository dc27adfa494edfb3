package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/catalog"
)

// CatalogConfig selects the service catalog backend. A Redis URL takes
// precedence over the definition file.
type CatalogConfig struct {
	DefinitionPath string
	RedisURL       string
	// RefreshSpec reloads a file catalog on this cron schedule when set.
	RefreshSpec string
}

// NewCatalog opens the configured catalog. The returned function releases it.
func NewCatalog(ctx context.Context, logger *slog.Logger, config CatalogConfig) (catalog.Catalog, func(), error) {
	if config.RedisURL != "" {
		redisCatalog, err := catalog.NewRedis(ctx, logger, config.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis catalog: %w", err)
		}

		return redisCatalog, func() {
			if err := redisCatalog.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close redis catalog", "error", err)
			}
		}, nil
	}

	fileCatalog, err := catalog.NewFile(ctx, logger, config.DefinitionPath)
	if err != nil {
		return nil, nil, err
	}

	if config.RefreshSpec == "" {
		return fileCatalog, func() {}, nil
	}

	refresher, err := catalog.NewRefresher(ctx, logger, fileCatalog, config.RefreshSpec)
	if err != nil {
		return nil, nil, err
	}

	refresher.Start()

	return fileCatalog, refresher.Stop, nil
}
