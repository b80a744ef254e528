package handlers

import (
	"context"
	"net/http"

	"example.com/backstage/services/picking/internal/search"
	"example.com/backstage/services/picking/internal/services"

	"github.com/gin-gonic/gin"
)

// ActivitySearcher queries the projected activity index
type ActivitySearcher interface {
	SearchActivity(ctx context.Context, query map[string]interface{}) ([]map[string]interface{}, error)
}

// ErrSearchUnavailable is returned when no activity index is configured
var ErrSearchUnavailable = &Error{Message: "Activity search is not configured", StatusCode: http.StatusServiceUnavailable, Code: "SEARCH_UNAVAILABLE"}

// ActivityHandler serves seal lookups and the activity history
type ActivityHandler struct {
	seals    *services.SealRegistry
	searcher ActivitySearcher
}

// NewActivityHandler creates a new activity handler; searcher may be nil
func NewActivityHandler(seals *services.SealRegistry, searcher ActivitySearcher) *ActivityHandler {
	return &ActivityHandler{seals: seals, searcher: searcher}
}

// RegisterRoutes registers the activity routes
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/seals/:code", h.LookupSeal)
	rg.GET("/activity", admin, h.SearchActivity)
}

// LookupSeal returns the order a seal code was used on
func (h *ActivityHandler) LookupSeal(c *gin.Context) {
	entry, err := h.seals.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// SearchActivity lists projected activity events, newest first
func (h *ActivityHandler) SearchActivity(c *gin.Context) {
	if h.searcher == nil {
		RespondError(c, ErrSearchUnavailable)
		return
	}
	size, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	docs, err := h.searcher.SearchActivity(c.Request.Context(), search.ActivityQuery(search.ActivityFilter{
		AggregateID: c.Query("aggregateId"),
		EventType:   c.Query("eventType"),
		ActorUID:    c.Query("actor"),
		Size:        size,
	}))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}
