package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/repositories"
	"example.com/backstage/services/picking/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LotHandler handles lot-related HTTP requests
type LotHandler struct {
	lotService *services.LotService
}

// NewLotHandler creates a new lot handler
func NewLotHandler(lotService *services.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// CreateLotRequest is the body of a lot import
type CreateLotRequest struct {
	LotCode  string                   `json:"lotCode"`
	WorkMode domain.WorkMode          `json:"workMode"`
	Orders   []services.ImportedOrder `json:"orders"`
}

// CreateAdminLotRequest is the body of an admin lot import
type CreateAdminLotRequest struct {
	CreateLotRequest
	Assignment services.Assignment `json:"assignment"`
}

// SealRequest carries the seal code scanned for an order
type SealRequest struct {
	SealedCode string `json:"sealedCode"`
}

// RegisterRoutes registers the lot routes
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	lots := rg.Group("/lots")
	lots.POST("", h.CreateLot)
	lots.GET("", h.ListLots)
	lots.GET("/ready-for-scan", h.ListReadyForScan)
	lots.GET("/status-counts", h.CountByStatus)
	lots.GET("/:lotCode", h.GetLot)
	lots.GET("/:lotCode/orders", h.ListOrders)
	lots.GET("/:lotCode/all-sealed", h.CheckAllSealed)
	lots.POST("/:lotCode/start", h.Start)
	lots.POST("/:lotCode/close", h.Close)
	lots.POST("/:lotCode/close-for-separator", h.CloseForSeparator)
	lots.POST("/:lotCode/claim", h.Claim)
	lots.POST("/:lotCode/start-scanning", h.StartScanning)
	lots.POST("/:lotCode/orders/:orderCode/seal", h.SealOrder)
	lots.POST("/:lotCode/complete", h.Complete)
	lots.DELETE("/:lotCode", admin, h.DeleteLot)

	rg.POST("/admin/lots", admin, h.CreateAdminLot)
}

// CreateLot imports a lot owned by the caller
func (h *LotHandler) CreateLot(c *gin.Context) {
	var req CreateLotRequest
	if !bindJSON(c, &req) {
		return
	}

	lot, err := h.lotService.Create(c.Request.Context(), services.CreateLotInput{
		LotCode:  req.LotCode,
		WorkMode: req.WorkMode,
		Orders:   req.Orders,
		Creator:  Identity(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	log.Info().Str("lot_code", lot.LotCode).Str("request_id", c.GetString(RequestIDKey)).Msg("Lot imported")
	c.JSON(http.StatusCreated, lot)
}

// CreateAdminLot imports a lot with pre-assigned workers
func (h *LotHandler) CreateAdminLot(c *gin.Context) {
	var req CreateAdminLotRequest
	if !bindJSON(c, &req) {
		return
	}

	lot, err := h.lotService.CreateAdminLot(c.Request.Context(), services.CreateLotInput{
		LotCode:  req.LotCode,
		WorkMode: req.WorkMode,
		Orders:   req.Orders,
		Creator:  Identity(c),
	}, req.Assignment)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// ListLots lists lots filtered by status, creator, separator or scanner
func (h *LotHandler) ListLots(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	lots, err := h.lotService.List(c.Request.Context(), repositories.LotFilter{
		Status:       domain.LotStatus(c.Query("status")),
		CreatedByUID: c.Query("createdBy"),
		SeparatorUID: c.Query("separator"),
		ScannerUID:   c.Query("scanner"),
		Limit:        limit,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// ListReadyForScan lists lots waiting for a scanner
func (h *LotHandler) ListReadyForScan(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	lots, err := h.lotService.ListReadyForScan(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// CountByStatus returns the number of lots per status
func (h *LotHandler) CountByStatus(c *gin.Context) {
	counts, err := h.lotService.CountByStatus(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetLot returns a lot by code
func (h *LotHandler) GetLot(c *gin.Context) {
	lot, err := h.lotService.Get(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// ListOrders returns the orders of a lot
func (h *LotHandler) ListOrders(c *gin.Context) {
	orders, err := h.lotService.ListOrders(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CheckAllSealed reports whether every order of a lot is sealed
func (h *LotHandler) CheckAllSealed(c *gin.Context) {
	sealed, err := h.lotService.CheckAllSealed(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allSealed": sealed})
}

func (h *LotHandler) Start(c *gin.Context) {
	lot, err := h.lotService.Start(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Close(c *gin.Context) {
	lot, err := h.lotService.Close(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) CloseForSeparator(c *gin.Context) {
	lot, err := h.lotService.CloseForSeparator(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// Claim makes the caller the scanner of a lot handed off by its separator
func (h *LotHandler) Claim(c *gin.Context) {
	lot, err := h.lotService.ClaimForScanning(c.Request.Context(), c.Param("lotCode"), Identity(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) StartScanning(c *gin.Context) {
	lot, err := h.lotService.StartScanning(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// SealOrder attaches a seal code to an order. Rejections are reported in the
// body with 200 so scanners can keep going.
func (h *LotHandler) SealOrder(c *gin.Context) {
	var req SealRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.lotService.SealOrder(c.Request.Context(), c.Param("lotCode"), c.Param("orderCode"), req.SealedCode)
	c.JSON(http.StatusOK, result)
}

// Complete finishes a lot and credits XP
func (h *LotHandler) Complete(c *gin.Context) {
	result, err := h.lotService.Complete(c.Request.Context(), c.Param("lotCode"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteLot removes a lot and frees its seal codes
func (h *LotHandler) DeleteLot(c *gin.Context) {
	if err := h.lotService.Delete(c.Request.Context(), c.Param("lotCode")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
