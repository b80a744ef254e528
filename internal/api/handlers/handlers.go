package handlers

import (
	"strconv"

	"example.com/backstage/services/picking/internal/domain"

	"github.com/gin-gonic/gin"
)

// Context keys shared with the api middleware
const (
	RequestIDKey = "request_id"
	IdentityKey  = "identity"
)

// Identity returns the acting user placed on the context by the identity middleware
func Identity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	id, _ := domain.IdentityFrom(c.Request.Context())
	return id
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		RespondError(c, NewValidationError(name+" must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
