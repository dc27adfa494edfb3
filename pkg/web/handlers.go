// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// OriginHTTP marks executions triggered through the REST API.
const OriginHTTP = "http"

type APIHandlers struct {
	workflowService *services.Workflow
	triggerService  *services.Trigger
	catalog         catalog.Catalog
	validator       *validator.Validate
	logger          *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	triggerService *services.Trigger,
	catalog catalog.Catalog,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		triggerService:  triggerService,
		catalog:         catalog,
		validator:       validator,
		logger:          logger,
	}
}

// Routes mounts the workflow and trigger endpoints.
func (h *APIHandlers) Routes(router fiber.Router) {
	router.Use(TraceContext())

	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)

	router.Post("/triggers", h.TriggerWorkflow)
	router.Post("/executions", h.TriggerWorkflow)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req := services.ListWorkflowsRequest{Name: c.Query("name")}

	workflows, err := h.workflowService.List(c.Context(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(WorkflowListResponse{
		Workflows:  workflows,
		TotalCount: len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	catalogCheck, catalogOk := catalog.Health(c.Context(), h.catalog)
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Workflow manager is unhealthy"
	httpStatus := http.StatusInternalServerError

	if catalogOk && repOk {
		status = "healthy"
		message = "Workflow manager is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"catalog":    catalogCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// CreateWorkflow accepts a YAML or JSON workflow definition, chosen by the
// request content type.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	def, err := definition.Parse(c.Body(), definition.FormatFromContentType(c.Get(fiber.HeaderContentType)))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	created, err := h.workflowService.Create(c.Context(), def)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	def, err := definition.Parse(c.Body(), definition.FormatFromContentType(c.Get(fiber.HeaderContentType)))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	updated, err := h.workflowService.Update(c.Context(), id, def)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerWorkflow submits one execution of a stored workflow. A broker that
// never confirms the message does not fail the request.
func (h *APIHandlers) TriggerWorkflow(c fiber.Ctx) error {
	var req TriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	executionID, err := h.triggerService.Trigger(c.Context(), services.TriggerRequest{
		WorkflowName: req.WorkflowName,
		Tags:         req.Tags,
		Parameters:   req.Parameters,
		Args:         req.Args,
		Origin:       OriginHTTP,
	})
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(TriggerResponse{ExecutionID: executionID})
}

func workflowID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}

	if id <= 0 {
		return 0, strconv.ErrRange
	}

	return id, nil
}
