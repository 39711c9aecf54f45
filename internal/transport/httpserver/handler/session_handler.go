package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/validator"
)

// SessionHandler exposes the review session and catalog as JSON.
type SessionHandler struct {
	session   *service.ReviewSession
	catalog   *service.CatalogService
	downloads *service.DownloadService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	session *service.ReviewSession,
	catalog *service.CatalogService,
	downloads *service.DownloadService,
	v *validator.Validator,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		session:   session,
		catalog:   catalog,
		downloads: downloads,
		validator: v,
		logger:    logger,
	}
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(dto.FromPosition(h.session.CurrentPosition(c.UserContext())))
}

// Decide handles POST /api/v1/session/decision
func (h *SessionHandler) Decide(c *fiber.Ctx) error {
	var req dto.SessionDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	decision := req.ToDecision()
	if decision.Action == domain.ActionSwitchProvider && decision.Provider == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "provider is required for switch-provider",
			Code:  "VALIDATION_ERROR",
		})
	}

	if err := h.session.Decide(c.UserContext(), decision); err != nil {
		h.logger.Warn("session decision failed",
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return jsonError(c, err)
	}

	return c.JSON(dto.FromPosition(h.session.CurrentPosition(c.UserContext())))
}

// Jump handles POST /api/v1/session/jump. Out-of-range indexes are ignored
// and the unchanged position is returned.
func (h *SessionHandler) Jump(c *fiber.Ctx) error {
	var req dto.JumpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	h.session.Jump(req.Index - 1)

	return c.JSON(dto.FromPosition(h.session.CurrentPosition(c.UserContext())))
}

// Catalog handles GET /api/v1/catalog
func (h *SessionHandler) Catalog(c *fiber.Ctx) error {
	var q dto.CatalogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	records := h.catalog.RecordsFor(domain.ProviderTag(q.Provider))
	if q.Term != "" {
		key := domain.FolderKey(q.Term)
		filtered := records[:0]
		for _, tr := range records {
			if tr.TermKey == key {
				filtered = append(filtered, tr)
			}
		}
		records = filtered
	}

	return c.JSON(dto.FromTermRecords(records))
}

// Providers handles GET /api/v1/providers
func (h *SessionHandler) Providers(c *fiber.Ctx) error {
	tags := h.session.Providers()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}

	return c.JSON(dto.ProvidersResponse{
		Providers: names,
		Active:    h.session.ActiveProvider().String(),
	})
}

// Download handles POST /api/v1/downloads/:provider
func (h *SessionHandler) Download(c *fiber.Ctx) error {
	tag, err := domain.ParseProviderTag(c.Params("provider"))
	if err != nil {
		return jsonError(c, err)
	}

	result := h.downloads.DownloadCatalog(c.UserContext(), tag)
	if result.Error != nil {
		return c.Status(statusFor(result.Error)).JSON(dto.FromDownloadResult(result))
	}

	return c.JSON(dto.FromDownloadResult(result))
}
