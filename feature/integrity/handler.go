package integrity

import (
	"marketplace/core/logger"
	"marketplace/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/photos", h.HandlePhotoCheck)
}

// wantsFix reports whether the request asks for a repair. Only admins may.
func wantsFix(c *fiber.Ctx) (fix bool, allowed bool) {
	if c.Query("fix") != "true" {
		return false, true
	}
	return true, auth.ActorFrom(c).Admin
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the storage, schema and photo checks. Nothing is repaired.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if res, err := h.service.CheckStorage(ctx); err != nil {
		report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = res
	}

	if res, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = res
	}

	if res, err := h.service.CheckPhotos(ctx); err != nil {
		report["photos"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["photos"] = res
	}

	return c.JSON(report)
}

// HandleStorageCheck checks and optionally creates the photo bucket.
// @Summary Check Storage
// @Description Checks that the photo bucket exists. Admins may pass fix=true to create it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} checks.StorageReport
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix, allowed := wantsFix(c)
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	report, err := h.service.CheckStorage(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists && fix {
		l.Info("Creating missing bucket", zap.String("bucket", report.Bucket))
		if err := h.service.FixStorage(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create bucket",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "bucket": report.Bucket})
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Schema
// @Description Compares the live database tables with the expected columns.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandlePhotoCheck checks listing photos and optionally drops dangling associations.
// @Summary Check Photos
// @Description Finds dangling photo associations, orphaned listing resources and objects missing from the bucket. Admins may pass fix=true to drop dangling associations.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Remove dangling associations"
// @Success 200 {object} checks.PhotoReport
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/photos [get]
func (h *Handler) HandlePhotoCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix, allowed := wantsFix(c)
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	report, err := h.service.CheckPhotos(c.Context())
	if err != nil {
		l.Error("Photo check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Healthy() {
		l.Warn("Photo inconsistencies detected",
			zap.Int("dangling", len(report.Dangling)),
			zap.Int("orphaned", len(report.Orphaned)),
			zap.Int("missing_objects", len(report.MissingObjects)))
	}

	if fix && len(report.Dangling) > 0 {
		removed, err := h.service.FixPhotos(c.Context(), report)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to remove dangling photos",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "removed": removed, "report": report})
	}

	return c.JSON(report)
}
