package handler

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/filestore"
	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/validator"
)

// GalleryConfig locates the project folder and its zip export.
type GalleryConfig struct {
	ProjectDir string
	ZipDir     string
}

// GalleryHandler lists, deletes and exports accepted photos.
type GalleryHandler struct {
	catalog   *service.CatalogService
	downloads *service.DownloadService
	cfg       GalleryConfig
	site      Site
	validator *validator.Validator
	logger    *zap.Logger
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(
	catalog *service.CatalogService,
	downloads *service.DownloadService,
	cfg GalleryConfig,
	site Site,
	v *validator.Validator,
	logger *zap.Logger,
) *GalleryHandler {
	return &GalleryHandler{
		catalog:   catalog,
		downloads: downloads,
		cfg:       cfg,
		site:      site,
		validator: v,
		logger:    logger,
	}
}

// Gallery handles GET /gallery
func (h *GalleryHandler) Gallery(c *fiber.Ctx) error {
	catalog := dto.FromTermRecords(h.catalog.RecordsFor(""))

	return c.Render("pages/gallery", h.site.page("Gallery", fiber.Map{
		"Catalog": catalog,
	}), "layouts/base")
}

// DeleteImage handles POST /delete-image. The local file goes first, then
// the catalog entry.
func (h *GalleryHandler) DeleteImage(c *fiber.Ctx) error {
	var form dto.DeleteImageForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	if err := h.validator.Validate(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	provider := domain.ProviderTag(form.APIType)
	rec, ok := h.find(form.Term, form.ImageID, provider)
	if !ok {
		return pageError(domain.ErrRecordNotFound)
	}

	if err := h.downloads.RemoveRecord(form.Term, rec); err != nil {
		h.logger.Warn("removing image file failed",
			zap.String("term", form.Term),
			zap.String("id", form.ImageID),
			zap.Error(err),
		)
	}
	if _, err := h.catalog.Remove(c.UserContext(), form.Term, form.ImageID, provider); err != nil {
		return pageError(err)
	}

	return c.Redirect("/gallery", fiber.StatusSeeOther)
}

// DownloadZip handles GET /download-zip
func (h *GalleryHandler) DownloadZip(c *fiber.Ctx) error {
	name := filepath.Base(h.cfg.ProjectDir) + ".zip"
	dest := filepath.Join(h.cfg.ZipDir, name)

	if err := filestore.ZipDir(h.cfg.ProjectDir, dest); err != nil {
		h.logger.Error("creating zip failed", zap.String("dir", h.cfg.ProjectDir), zap.Error(err))
		return c.Redirect("/gallery", fiber.StatusSeeOther)
	}

	h.logger.Info("project zip created", zap.String("path", dest))

	return c.Download(dest, name)
}

func (h *GalleryHandler) find(termKey, id string, provider domain.ProviderTag) (domain.CatalogRecord, bool) {
	for _, rec := range h.catalog.Snapshot()[termKey] {
		if rec.ID == id && rec.Provider == provider {
			return rec, true
		}
	}

	return domain.CatalogRecord{}, false
}
