package market

import (
	"time"

	"marketplace/core/apperr"
	"marketplace/core/logger"
	"marketplace/core/middleware/auth"
	"marketplace/feature/market/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the market.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the market routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	user := auth.RequireUser()
	group := app.Group("/market")

	group.Get("/listing/:id", h.HandleGetListing)
	group.Post("/listings", user, h.HandleCreateListing)
	group.Patch("/listing/:id", user, h.HandleUpdateListing)
	group.Put("/listing/:id/quantity", user, h.HandleUpdateQuantity)
	group.Post("/listing/:id/refresh", user, h.HandleRefresh)
	group.Post("/listing/:id/archive", user, h.HandleArchive)
	group.Post("/listing/:id/bid", user, h.HandlePlaceBid)

	group.Get("/aggregate/:game_item_id", h.HandleGetAggregate)

	group.Post("/multiple", user, h.HandleCreateMultiple)
	group.Get("/multiple/:id", h.HandleGetMultiple)
	group.Patch("/multiple/:id", user, h.HandleUpdateMultiple)

	group.Post("/buyorder", user, h.HandleCreateBuyOrder)
	group.Post("/buyorder/:id/fulfill", user, h.HandleFulfillBuyOrder)
	group.Post("/buyorder/:id/cancel", user, h.HandleCancelBuyOrder)
	group.Get("/buyorders/:game_item_id", h.HandleListBuyOrders)

	group.Post("/purchase", user, h.HandlePurchase)
}

func actorOf(c *fiber.Ctx) Actor {
	a := auth.ActorFrom(c)
	return Actor{UserID: a.UserID, Admin: a.Admin}
}

// fail writes err as a JSON error response. Unclassified errors are logged and
// hidden behind a generic message.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Market request failed",
			zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": apperr.PublicMessage(err)})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}

// HandleGetListing returns the complete view of a listing.
// @Summary Get Listing
// @Description Resolve a listing into its unique, multiple or aggregate view.
// @Tags market
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /market/listing/{id} [get]
func (h *Handler) HandleGetListing(c *fiber.Ctx) error {
	view, err := h.service.GetComplete(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"type": view.Kind(), "listing": view})
}

type createListingRequest struct {
	SaleType            string               `json:"sale_type"`
	Price               decimal.Decimal      `json:"price"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	ItemType            string               `json:"item_type"`
	ItemName            string               `json:"item_name"`
	QuantityAvailable   int                  `json:"quantity_available"`
	Photos              []string             `json:"photos"`
	Status              models.ListingStatus `json:"status"`
	Internal            bool                 `json:"internal"`
	ContractorID        string               `json:"contractor_id"`
	MinimumBidIncrement decimal.Decimal      `json:"minimum_bid_increment"`
	EndTime             time.Time            `json:"end_time"`
}

// HandleCreateListing creates a listing.
// @Summary Create Listing
// @Description Create a unique ("sale") or auction listing.
// @Tags market
// @Accept json
// @Produce json
// @Param body body createListingRequest true "Listing"
// @Success 201 {object} models.UniqueComplete
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Catalog item not found"
// @Router /market/listings [post]
func (h *Handler) HandleCreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.service.CreateListing(c.Context(), actorOf(c), CreateListingInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

type updateListingRequest struct {
	Price             *decimal.Decimal      `json:"price"`
	QuantityAvailable *int                  `json:"quantity_available"`
	Status            *models.ListingStatus `json:"status"`
	Title             *string               `json:"title"`
	Description       *string               `json:"description"`
	ItemType          *string               `json:"item_type"`
	ItemName          *string               `json:"item_name"`
	Internal          *bool                 `json:"internal"`
	Photos            []string              `json:"photos"`
}

// HandleUpdateListing applies a partial update to a listing.
// @Summary Update Listing
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param body body updateListingRequest true "Patch"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/listing/{id} [patch]
func (h *Handler) HandleUpdateListing(c *fiber.Ctx) error {
	var req updateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.service.UpdateListing(c.Context(), actorOf(c), c.Params("id"), ListingPatch(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"type": view.Kind(), "listing": view})
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// HandleUpdateQuantity sets the available quantity of a listing.
// @Summary Update Quantity
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param body body quantityRequest true "Quantity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /market/listing/{id}/quantity [put]
func (h *Handler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return badBody(c)
	}
	view, err := h.service.UpdateQuantity(c.Context(), actorOf(c), c.Params("id"), *req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"type": view.Kind(), "listing": view})
}

// HandleRefresh extends the expiration of a listing.
// @Summary Refresh Listing
// @Tags market
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} models.Listing
// @Failure 400 {object} map[string]string "Refreshed too recently"
// @Router /market/listing/{id}/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l, err := h.service.RefreshListing(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(l)
}

// HandleArchive archives a listing.
// @Summary Archive Listing
// @Tags market
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} models.Listing
// @Failure 400 {object} map[string]string "Already archived"
// @Router /market/listing/{id}/archive [post]
func (h *Handler) HandleArchive(c *fiber.Ctx) error {
	l, err := h.service.ArchiveListing(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(l)
}

type bidRequest struct {
	Bid decimal.Decimal `json:"bid"`
}

// HandlePlaceBid places a bid on an auction.
// @Summary Place Bid
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param body body bidRequest true "Bid"
// @Success 201 {object} models.Bid
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Own listing"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/listing/{id}/bid [post]
func (h *Handler) HandlePlaceBid(c *fiber.Ctx) error {
	var req bidRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	bid, err := h.service.PlaceBid(c.Context(), actorOf(c), c.Params("id"), req.Bid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

// HandleGetAggregate returns the catalog view of a game item.
// @Summary Get Aggregate
// @Tags market
// @Produce json
// @Param game_item_id path string true "Game item id"
// @Success 200 {object} models.AggregateComplete
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/aggregate/{game_item_id} [get]
func (h *Handler) HandleGetAggregate(c *fiber.Ctx) error {
	view, err := h.service.GetAggregate(c.Context(), c.Params("game_item_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

type createMultipleRequest struct {
	Listings         []string `json:"listings"`
	DefaultListingID string   `json:"default_listing_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ItemType         string   `json:"item_type"`
	ContractorID     string   `json:"contractor_id"`
}

// HandleCreateMultiple groups unique listings.
// @Summary Create Multiple
// @Tags market
// @Accept json
// @Produce json
// @Param body body createMultipleRequest true "Group"
// @Success 201 {object} models.MultipleComplete
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /market/multiple [post]
func (h *Handler) HandleCreateMultiple(c *fiber.Ctx) error {
	var req createMultipleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.service.CreateMultiple(c.Context(), actorOf(c), CreateMultipleInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleGetMultiple returns a group.
// @Summary Get Multiple
// @Tags market
// @Produce json
// @Param id path string true "Multiple id"
// @Success 200 {object} models.MultipleComplete
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/multiple/{id} [get]
func (h *Handler) HandleGetMultiple(c *fiber.Ctx) error {
	view, err := h.service.GetMultiple(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

type updateMultipleRequest struct {
	Listings         []string `json:"listings"`
	DefaultListingID *string  `json:"default_listing_id"`
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	ItemType         *string  `json:"item_type"`
}

// HandleUpdateMultiple changes a group.
// @Summary Update Multiple
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Multiple id"
// @Param body body updateMultipleRequest true "Changes"
// @Success 200 {object} models.MultipleComplete
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/multiple/{id} [patch]
func (h *Handler) HandleUpdateMultiple(c *fiber.Ctx) error {
	var req updateMultipleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.service.UpdateMultiple(c.Context(), actorOf(c), c.Params("id"), UpdateMultipleInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

type createBuyOrderRequest struct {
	GameItemID string          `json:"game_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Expiry     time.Time       `json:"expiry"`
}

// HandleCreateBuyOrder places a buy order.
// @Summary Create Buy Order
// @Tags market
// @Accept json
// @Produce json
// @Param body body createBuyOrderRequest true "Buy order"
// @Success 201 {object} models.BuyOrder
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Catalog item not found"
// @Router /market/buyorder [post]
func (h *Handler) HandleCreateBuyOrder(c *fiber.Ctx) error {
	var req createBuyOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	order, err := h.service.CreateBuyOrder(c.Context(), actorOf(c), CreateBuyOrderInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

type fulfillRequest struct {
	ContractorID string `json:"contractor_id"`
}

// HandleFulfillBuyOrder sells into a buy order.
// @Summary Fulfill Buy Order
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Buy order id"
// @Param body body fulfillRequest false "Seller contractor"
// @Success 200 {object} OfferResult
// @Failure 400 {object} map[string]string "Invalid buy order"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /market/buyorder/{id}/fulfill [post]
func (h *Handler) HandleFulfillBuyOrder(c *fiber.Ctx) error {
	var req fulfillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}
	res, err := h.service.FulfillBuyOrder(c.Context(), actorOf(c), c.Params("id"), req.ContractorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleCancelBuyOrder cancels one of the caller's buy orders.
// @Summary Cancel Buy Order
// @Tags market
// @Produce json
// @Param id path string true "Buy order id"
// @Success 200 {object} models.BuyOrder
// @Failure 400 {object} map[string]string "Invalid buy order"
// @Router /market/buyorder/{id}/cancel [post]
func (h *Handler) HandleCancelBuyOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelBuyOrder(c.Context(), actorOf(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

// HandleListBuyOrders lists the open buy orders of a catalog item.
// @Summary List Buy Orders
// @Tags market
// @Produce json
// @Param game_item_id path string true "Game item id"
// @Success 200 {array} models.BuyOrder
// @Failure 404 {object} map[string]string "Not Found"
// @Router /market/buyorders/{game_item_id} [get]
func (h *Handler) HandleListBuyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListBuyOrders(c.Context(), c.Params("game_item_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(orders)
}

type purchaseItem struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type purchaseRequest struct {
	Items []purchaseItem `json:"items"`
	Note  string         `json:"note"`
}

// HandlePurchase buys listings from one seller.
// @Summary Purchase
// @Tags market
// @Accept json
// @Produce json
// @Param body body purchaseRequest true "Cart"
// @Success 200 {object} OfferResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 403 {object} map[string]string "Own listing"
// @Router /market/purchase [post]
func (h *Handler) HandlePurchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in := PurchaseInput{Note: req.Note, Items: make([]PurchaseItem, len(req.Items))}
	for i, it := range req.Items {
		in.Items[i] = PurchaseItem(it)
	}
	res, err := h.service.Purchase(c.Context(), actorOf(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}
