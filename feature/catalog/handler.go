package catalog

import (
	"errors"

	"marketplace/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/search", h.HandleSearch)
	group.Get("/items/:id", h.HandleGetItem)
}

// HandleSearch searches catalog item names.
// @Summary Search Catalog
// @Description Fuzzy search over catalog item names, used to fill item_name on listings.
// @Tags catalog
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Maximum results (default 20, max 100)"
// @Success 200 {array} catalog.Item
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	items, err := h.service.Search(c.Context(), c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Catalog search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(items)
}

// HandleGetItem returns one catalog item.
// @Summary Get Catalog Item
// @Tags catalog
// @Produce json
// @Param id path string true "Game item id"
// @Success 200 {object} catalog.Item
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/items/{id} [get]
func (h *Handler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetCatalogItem(c.Context(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Catalog item not found"})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Catalog lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(item)
}
