// Package main provides the workflow manager server and its maintenance commands.
package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/rpc"
	"github.com/dukex/taskcomposer/pkg/services"
	"github.com/dukex/taskcomposer/pkg/validation"
	"github.com/dukex/taskcomposer/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

type API struct {
	logger          *slog.Logger
	catalog         catalog.Catalog
	workflowService *services.Workflow
	triggerService  *services.Trigger
	validate        *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	serviceCatalog catalog.Catalog,
	submitter services.Submitter,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:  logger,
		catalog: serviceCatalog,
		workflowService: services.NewWorkflow(
			persistence,
			validation.NewDefinition(serviceCatalog, logger),
			logger,
		),
		triggerService: services.NewTrigger(
			persistence,
			validation.NewTrigger(logger),
			submitter,
			tracer,
			logger,
		),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.workflowService, a.triggerService, a.catalog, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Taskcomposer Workflow Manager")
	})

	handlers.Routes(app)

	return app
}

func (a *API) GRPCServer() *grpc.Server {
	return rpc.NewGRPCServer(a.triggerService, a.logger)
}

// Serve runs the HTTP and gRPC servers until ctx is cancelled or either
// server fails.
func (a *API) Serve(ctx context.Context, port, grpcPort int) error {
	app := a.App()
	grpcServer := a.GRPCServer()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.Listen(":" + strconv.Itoa(port))
	})

	group.Go(func() error {
		listener, err := net.Listen("tcp", ":"+strconv.Itoa(grpcPort))
		if err != nil {
			return err
		}

		a.logger.InfoContext(ctx, "gRPC server listening", "port", grpcPort)

		return grpcServer.Serve(listener)
	})

	group.Go(func() error {
		<-ctx.Done()

		a.logger.InfoContext(ctx, "Shutting down servers")
		grpcServer.GracefulStop()

		return app.Shutdown()
	})

	return group.Wait()
}
