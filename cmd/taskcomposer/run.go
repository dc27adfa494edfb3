package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/taskcomposer/pkg/cmd"
	"github.com/dukex/taskcomposer/pkg/log"
	"github.com/dukex/taskcomposer/pkg/submission"
	"github.com/urfave/cli/v3"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Serve the HTTP and gRPC APIs",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the HTTP server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:    "grpc-port",
				Usage:   "Port to run the gRPC server on",
				Value:   defaultGRPCPort,
				Sources: cli.EnvVars("GRPC_PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres://... or a directory)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "queue",
				Usage:   "Work queue provider (kafka, watermill-kafka, gochannel)",
				Value:   cmd.QueueKafka,
				Sources: cli.EnvVars("QUEUE_PROVIDER"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Value:   []string{"kafka:9092"},
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "submissions-topic",
				Usage:   "Topic receiving execution submissions",
				Value:   submission.DefaultTopic,
				Sources: cli.EnvVars("SUBMISSIONS_TOPIC"),
			},
			&cli.DurationFlag{
				Name:    "ack-timeout",
				Usage:   "How long a trigger waits for the broker to confirm a submission",
				Value:   submission.DefaultAckTimeout,
				Sources: cli.EnvVars("ACK_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "catalog-refresh",
				Usage:   "Cron schedule for reloading the catalog file (e.g. @every 1m)",
				Sources: cli.EnvVars("CATALOG_REFRESH"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		}, catalogFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.InfoContext(ctx, "Initializing workflow manager")

			tracer, shutdownTracer, err := cmd.NewTracer(ctx, command.Bool("tracing"), serviceName)
			if err != nil {
				return err
			}

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := shutdownTracer(shutdownCtx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			serviceCatalog, releaseCatalog, err := cmd.NewCatalog(ctx, logger, cmd.CatalogConfig{
				DefinitionPath: command.String("service-definition-path"),
				RedisURL:       command.String("catalog-redis-url"),
				RefreshSpec:    command.String("catalog-refresh"),
			})
			if err != nil {
				return err
			}
			defer releaseCatalog()

			publisher, err := cmd.NewPublisher(command.String("queue"), command.StringSlice("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := publisher.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close publisher", "error", err)
				}
			}()

			submitter := submission.NewSubmitter(publisher, tracer, logger,
				submission.WithTopic(command.String("submissions-topic")),
				submission.WithAckTimeout(command.Duration("ack-timeout")),
			)

			api := NewAPI(logger, persistence, serviceCatalog, submitter, tracer)

			return api.Serve(ctx, command.Int("port"), command.Int("grpc-port"))
		},
	}
}
