package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

// RestOrderHandler handles purchase-intent order endpoints.
type RestOrderHandler struct {
	orderService services.IOrderService
	taskClient   IAsynqClient
	userService  services.IUserService
}

// NewRestOrderHandler creates a new RestOrderHandler.
func NewRestOrderHandler(orderService services.IOrderService, userService services.IUserService, taskClient IAsynqClient) *RestOrderHandler {
	return &RestOrderHandler{orderService: orderService, userService: userService, taskClient: taskClient}
}

type createOrderRequest struct {
	Kind        models.OrderKind `json:"kind" binding:"required"`
	SubjectID   string           `json:"subject_id"`
	Description string           `json:"description" binding:"required"`
	Amount      float64          `json:"amount" binding:"required,gt=0"`
	BuyerName   string           `json:"buyer_name" binding:"required"`
	BuyerPhone  string           `json:"buyer_phone"`
}

// CreateOrder handles POST /v1/orders. The response carries the wa.me link
// the client redirects to; payment never touches the platform.
func (h *RestOrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	switch req.Kind {
	case models.OrderKindListing, models.OrderKindBooking, models.OrderKindPlan:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order kind"})
		return
	}

	order := &models.Order{
		UserID:      userID,
		Kind:        req.Kind,
		Description: req.Description,
		Amount:      req.Amount,
		BuyerName:   req.BuyerName,
		BuyerPhone:  req.BuyerPhone,
	}
	if req.SubjectID != "" {
		subjectID, err := utils.ParseSixID(req.SubjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID format"})
			return
		}
		order.SubjectID = &subjectID
	}

	result, err := h.orderService.Create(c.Request.Context(), order)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	if h.taskClient != nil {
		if user, uerr := h.userService.FindByID(c.Request.Context(), userID); uerr == nil {
			_ = enqueueEmail(c.Request.Context(), h.taskClient, user.Email,
				"Order received: "+result.Order.ID.String(),
				"We have recorded your order. Complete the payment via the WhatsApp link to finalize it.")
		}
	}

	c.JSON(http.StatusCreated, result)
}

// ListMyOrders handles GET /v1/my/orders
func (h *RestOrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}
