package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos-api/internal/application/service"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/response"
)

// ItemHandler handles catalog HTTP requests
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Search handles GET /items/search?q=
func (h *ItemHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.itemService.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Items retrieved successfully", items)
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	lowStock, _ := strconv.ParseBool(c.Query("low_stock"))

	result, err := h.itemService.ListItems(c.Request.Context(), &repository.ItemFilterParams{
		Pagination: paginationFromQuery(c),
		Search:     c.Query("search"),
		LowStock:   lowStock,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Items retrieved successfully", result)
}

// Get handles GET /items/:code
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.itemService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item retrieved successfully", item)
}

// Create handles POST /items
// @Summary Create item
// @Tags items
// @Accept json
// @Produce json
// @Param request body request.CreateItemRequest true "Item data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req request.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), &service.CreateItemInput{
		Name:          req.Name,
		Code:          req.Code,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		SellingPrice:  req.SellingPrice,
		Discount:      req.Discount,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item created successfully", item)
}

// AdjustStock handles PATCH /items/:code/stock
// @Summary Adjust stock or catalog discount
// @Tags items
// @Accept json
// @Produce json
// @Param code path string true "Item code"
// @Param request body request.AdjustStockRequest true "Stock change"
// @Success 200 {object} response.APIResponse
// @Router /items/{code}/stock [patch]
func (h *ItemHandler) AdjustStock(c *gin.Context) {
	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.itemService.AdjustStock(c.Request.Context(), c.Param("code"), &service.AdjustStockInput{
		QuantityDelta: req.QuantityDelta,
		Quantity:      req.Quantity,
		Discount:      req.Discount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated successfully", item)
}
