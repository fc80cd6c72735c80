package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/application/service"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/response"
)

// SaleHandler handles sale recording and history
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles POST /sales
// @Summary Record a sale
// @Description Converts the submitted lines into an immutable sale. Requires an Idempotency-Key header.
// @Tags sales
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Client-generated key, reused on retry"
// @Param request body request.CreateSaleRequest true "Sale"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.SaleItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.SaleItemInput{
			ItemID:          uuid.MustParse(it.ItemID),
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
		}
	}

	sale, err := h.saleService.Checkout(c.Request.Context(), &service.CheckoutInput{
		UserID:        userID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale recorded successfully", sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	start, err := dateFromQuery(c, "start_date", false)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := dateFromQuery(c, "end_date", true)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), userID, IsAdmin(c), &repository.SaleFilterParams{
		Pagination: paginationFromQuery(c),
		Search:     c.Query("search"),
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Sales retrieved successfully", result)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseUUIDParam(c, "id", "sale")
	if err != nil {
		response.Error(c, err)
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id, userID, IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Receipt handles GET /sales/:id/receipt
func (h *SaleHandler) Receipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := parseUUIDParam(c, "id", "sale")
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.saleService.GetReceipt(c.Request.Context(), id, userID, IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved successfully", receipt)
}
