package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"
)

const (
	serviceName     = "workflow-manager"
	defaultPort     = 9091
	defaultGRPCPort = 9090
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("taskcomposer exited", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	logLevel := &cli.StringFlag{
		Name:    "log-level",
		Usage:   "one of debug, info, warn, error",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}

	return &cli.Command{
		Name:                  "taskcomposer",
		Usage:                 "Store workflow definitions and trigger executions",
		EnableShellCompletion: true,
		Flags:                 []cli.Flag{logLevel},
		Commands:              []*cli.Command{RunCommand(), ValidateCommand(), CatalogCommand()},
	}
}

// catalogFlags are shared by the commands that read the service catalog.
func catalogFlags() []cli.Flag {
	definitionPath := &cli.StringFlag{
		Name:    "service-definition-path",
		Usage:   "services.json describing the known services and tasks",
		Value:   "/data/services.json",
		Sources: cli.EnvVars("SERVICE_DEFINITION_PATH"),
	}
	redisURL := &cli.StringFlag{
		Name:    "catalog-redis-url",
		Usage:   "Redis holding the service catalog; takes precedence over the definition file",
		Sources: cli.EnvVars("CATALOG_REDIS_URL"),
	}

	return []cli.Flag{definitionPath, redisURL}
}
