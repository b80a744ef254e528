package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/services"

	"github.com/gin-gonic/gin"
)

// SingleOrderHandler handles single order HTTP requests
type SingleOrderHandler struct {
	singleOrderService *services.SingleOrderService
}

// NewSingleOrderHandler creates a new single order handler
func NewSingleOrderHandler(singleOrderService *services.SingleOrderService) *SingleOrderHandler {
	return &SingleOrderHandler{singleOrderService: singleOrderService}
}

// CreateSingleOrderRequest is the body of a single order creation
type CreateSingleOrderRequest struct {
	OrderCode string `json:"orderCode"`
	Cycle     string `json:"cycle"`
	Items     int    `json:"items"`
}

// RegisterRoutes registers the single order routes
func (h *SingleOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/single-orders")
	orders.POST("", h.Create)
	orders.GET("", h.ListMine)
	orders.GET("/:id", h.Get)
	orders.POST("/:id/start-separation", h.StartSeparation)
	orders.POST("/:id/end-separation", h.EndSeparation)
	orders.POST("/:id/start-scanning", h.StartScanning)
	orders.POST("/:id/seal", h.Seal)
}

// Create registers a single order for the caller
func (h *SingleOrderHandler) Create(c *gin.Context) {
	var req CreateSingleOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.singleOrderService.Create(c.Request.Context(), services.CreateSingleOrderInput{
		OrderCode: req.OrderCode,
		Cycle:     req.Cycle,
		Items:     req.Items,
		Creator:   Identity(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMine lists the caller's single orders, newest first
func (h *SingleOrderHandler) ListMine(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	orders, err := h.singleOrderService.ListByUser(c.Request.Context(), Identity(c).UID, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *SingleOrderHandler) Get(c *gin.Context) {
	order, err := h.singleOrderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *SingleOrderHandler) StartSeparation(c *gin.Context) {
	order, err := h.singleOrderService.StartSeparation(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *SingleOrderHandler) EndSeparation(c *gin.Context) {
	order, err := h.singleOrderService.EndSeparation(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *SingleOrderHandler) StartScanning(c *gin.Context) {
	order, err := h.singleOrderService.StartScanning(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Seal closes the order with a seal code; the outcome is always in the body
func (h *SingleOrderHandler) Seal(c *gin.Context) {
	var req SealRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.singleOrderService.Seal(c.Request.Context(), c.Param("id"), req.SealedCode))
}
