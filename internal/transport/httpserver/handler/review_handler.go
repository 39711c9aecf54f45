package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/validator"
)

// ReviewHandler serves the review pages and form posts.
type ReviewHandler struct {
	session   *service.ReviewSession
	catalog   *service.CatalogService
	downloads *service.DownloadService
	site      Site
	validator *validator.Validator
	logger    *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	session *service.ReviewSession,
	catalog *service.CatalogService,
	downloads *service.DownloadService,
	site Site,
	v *validator.Validator,
	logger *zap.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		session:   session,
		catalog:   catalog,
		downloads: downloads,
		site:      site,
		validator: v,
		logger:    logger,
	}
}

// Home handles GET /
func (h *ReviewHandler) Home(c *fiber.Ctx) error {
	return c.Render("pages/home", h.site.page("Photo Curator", fiber.Map{
		"TermCount":     len(h.session.Terms()),
		"AcceptedTotal": h.catalog.Total(),
		"CatalogTerms":  len(h.catalog.Keys()),
		"Provider":      h.session.ActiveProvider().String(),
	}), "layouts/base")
}

// Review handles GET /review
func (h *ReviewHandler) Review(c *fiber.Ctx) error {
	if len(h.session.Terms()) == 0 {
		return c.Redirect("/setup", fiber.StatusSeeOther)
	}

	pos := h.session.CurrentPosition(c.UserContext())

	return c.Render("pages/review", h.site.page("Review", fiber.Map{
		"Position":  dto.FromPosition(pos),
		"Providers": h.session.Providers(),
	}), "layouts/base")
}

// Jump handles GET /review/:idx with a 1-based term index.
// Out-of-range indexes leave the session where it is.
func (h *ReviewHandler) Jump(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("idx")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "term index must be a number")
	}

	h.session.Jump(idx - 1)

	return c.Redirect("/review", fiber.StatusSeeOther)
}

// Decision handles POST /decision (yes, no, previous).
func (h *ReviewHandler) Decision(c *fiber.Ctx) error {
	var form dto.DecisionForm
	if err := h.parse(c, &form); err != nil {
		return err
	}

	if err := h.session.Decide(c.UserContext(), form.ToDecision()); err != nil {
		return pageError(err)
	}

	return c.Redirect("/review", fiber.StatusSeeOther)
}

// TermDecision handles POST /term-decision (next-term, prev-term).
func (h *ReviewHandler) TermDecision(c *fiber.Ctx) error {
	var form dto.TermDecisionForm
	if err := h.parse(c, &form); err != nil {
		return err
	}

	if err := h.session.Decide(c.UserContext(), form.ToDecision()); err != nil {
		return pageError(err)
	}

	return c.Redirect("/review", fiber.StatusSeeOther)
}

// APIDecision handles POST /api-decision (use-<provider>-api).
func (h *ReviewHandler) APIDecision(c *fiber.Ctx) error {
	var form dto.APIDecisionForm
	if err := h.parse(c, &form); err != nil {
		return err
	}

	decision, err := form.ToDecision()
	if err != nil {
		return pageError(err)
	}
	if err := h.session.Decide(c.UserContext(), decision); err != nil {
		return pageError(err)
	}

	return c.Redirect("/review", fiber.StatusSeeOther)
}

// DownloadAPIImages handles POST /download-api-images: every catalog record
// of the active provider is downloaded.
func (h *ReviewHandler) DownloadAPIImages(c *fiber.Ctx) error {
	result := h.downloads.DownloadCatalog(c.UserContext(), h.session.ActiveProvider())
	if result.Error != nil && !errors.Is(result.Error, service.ErrDownloadInProgress) {
		return pageError(result.Error)
	}

	return c.Redirect("/review", fiber.StatusSeeOther)
}

func (h *ReviewHandler) parse(c *fiber.Ctx, form interface{}) error {
	if err := c.BodyParser(form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	if err := h.validator.Validate(form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return nil
}
