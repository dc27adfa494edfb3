package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/taskcomposer/pkg/cmd"
	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/log"
	"github.com/dukex/taskcomposer/pkg/validation"
	"github.com/urfave/cli/v3"
)

// ErrNoDefinitions is returned when validate is called without files.
var ErrNoDefinitions = errors.New("no workflow definition files given")

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check workflow definition files against the service catalog",
		ArgsUsage: "<file> [file...]",
		Flags:     catalogFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("validate")

			paths := command.Args().Slice()
			if len(paths) == 0 {
				return ErrNoDefinitions
			}

			serviceCatalog, release, err := cmd.NewCatalog(ctx, logger, cmd.CatalogConfig{
				DefinitionPath: command.String("service-definition-path"),
				RedisURL:       command.String("catalog-redis-url"),
			})
			if err != nil {
				return err
			}
			defer release()

			validator := validation.NewDefinition(serviceCatalog, logger)
			out := command.Root().Writer

			var failures []error

			for _, path := range paths {
				err := validateFile(ctx, validator, path)
				if err != nil {
					_, _ = fmt.Fprintf(out, "%s: %v\n", path, err)
					failures = append(failures, fmt.Errorf("%s: %w", path, err))

					continue
				}

				_, _ = fmt.Fprintf(out, "%s: ok\n", path)
			}

			return errors.Join(failures...)
		},
	}
}

func validateFile(ctx context.Context, validator *validation.Definition, path string) error {
	def, err := definition.ParseFile(path)
	if err != nil {
		return err
	}

	return validator.Validate(ctx, def.ToWorkflow().Steps)
}
