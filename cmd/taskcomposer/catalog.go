package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/log"
	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/urfave/cli/v3"
)

// ErrRedisURLRequired is returned when catalog import has no target.
var ErrRedisURLRequired = errors.New("--catalog-redis-url is required")

func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the service catalog",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Copy the services.json catalog into Redis",
				Flags: catalogFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					logger := log.WithModule("catalog")

					redisURL := command.String("catalog-redis-url")
					if redisURL == "" {
						return ErrRedisURLRequired
					}

					source, err := catalog.NewFile(ctx, logger, command.String("service-definition-path"))
					if err != nil {
						return err
					}

					target, err := catalog.NewRedis(ctx, logger, redisURL)
					if err != nil {
						return err
					}

					defer func() {
						if err := target.Close(); err != nil {
							logger.ErrorContext(ctx, "Failed to close redis catalog", "error", err)
						}
					}()

					services := source.Services()
					slices.SortFunc(services, func(a, b *models.Service) int {
						return strings.Compare(a.Name, b.Name)
					})

					for _, service := range services {
						if err := target.Register(ctx, service); err != nil {
							return fmt.Errorf("failed to register service %s: %w", service.Name, err)
						}

						logger.InfoContext(ctx, "Service registered", "service", service.Name, "tasks", len(service.Tasks))
					}

					_, _ = fmt.Fprintf(command.Root().Writer, "imported %d services\n", len(services))

					return nil
				},
			},
		},
	}
}
