package handler

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/validator"
)

// EnvVar is one .env entry shown on the settings page.
type EnvVar struct {
	Key   string
	Value string
}

// SetupHandler edits the term file and shows the .env settings.
type SetupHandler struct {
	terms     *service.TermService
	session   *service.ReviewSession
	envFile   string
	site      Site
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSetupHandler creates a new SetupHandler.
func NewSetupHandler(
	terms *service.TermService,
	session *service.ReviewSession,
	envFile string,
	site Site,
	v *validator.Validator,
	logger *zap.Logger,
) *SetupHandler {
	return &SetupHandler{
		terms:     terms,
		session:   session,
		envFile:   envFile,
		site:      site,
		validator: v,
		logger:    logger,
	}
}

// Show handles GET /setup
func (h *SetupHandler) Show(c *fiber.Ctx) error {
	raw, err := h.terms.Raw()
	if err != nil {
		return err
	}

	return c.Render("pages/setup", h.site.page("Search terms", fiber.Map{
		"Terms":  raw,
		"Active": len(h.session.Terms()),
	}), "layouts/base")
}

// Save handles POST /setup. The session restarts on the new list.
func (h *SetupHandler) Save(c *fiber.Ctx) error {
	var form dto.SetupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	if err := h.validator.Validate(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	terms, err := h.terms.Save(form.Terms)
	if err != nil {
		return err
	}
	h.session.ReplaceTerms(terms)

	return c.Redirect("/review", fiber.StatusSeeOther)
}

// Settings handles GET /settings
func (h *SetupHandler) Settings(c *fiber.Ctx) error {
	vars, err := readEnvFile(h.envFile)
	if err != nil {
		return err
	}

	return c.Render("pages/settings", h.site.page("Settings", fiber.Map{
		"EnvFile": h.envFile,
		"Vars":    vars,
	}), "layouts/base")
}

// readEnvFile returns the file's entries sorted by key with secrets masked.
// A missing file has no entries.
func readEnvFile(path string) ([]EnvVar, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	vars := make([]EnvVar, 0, len(values))
	for k, v := range values {
		vars = append(vars, EnvVar{Key: k, Value: maskSecret(k, v)})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Key < vars[j].Key })

	return vars, nil
}

func maskSecret(key, value string) string {
	upper := strings.ToUpper(key)
	if !strings.Contains(upper, "KEY") && !strings.Contains(upper, "SECRET") &&
		!strings.Contains(upper, "PASSWORD") && !strings.Contains(upper, "DSN") {
		return value
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}

	return value[:4] + strings.Repeat("*", len(value)-4)
}
