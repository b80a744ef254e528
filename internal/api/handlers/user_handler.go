package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/scoring"
	"example.com/backstage/services/picking/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profiles, the leaderboard and the XP rules
type UserHandler struct {
	userService  *services.UserService
	rulesService *services.RulesService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, rulesService *services.RulesService) *UserHandler {
	return &UserHandler{userService: userService, rulesService: rulesService}
}

// RegisterRoutes registers the user and rules routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/users/me", h.Me)
	rg.GET("/users/:uid", h.GetProfile)
	rg.GET("/leaderboard", h.Leaderboard)

	rg.GET("/rules", h.GetRules)
	rg.PUT("/rules", admin, h.UpdateRules)
}

// Me returns the caller's profile
func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), Identity(c).UID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("uid"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Leaderboard returns the top users by XP
func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	board, err := h.userService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetRules returns the XP rules currently in force
func (h *UserHandler) GetRules(c *gin.Context) {
	rules, err := h.rulesService.Get(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// UpdateRules replaces the XP rules; later completions use the new values
func (h *UserHandler) UpdateRules(c *gin.Context) {
	var rules scoring.Rules
	if !bindJSON(c, &rules) {
		return
	}

	saved, err := h.rulesService.Update(c.Request.Context(), rules, Identity(c).UID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
