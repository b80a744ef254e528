package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/services"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task types and task logs
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes registers the task routes
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	types := rg.Group("/task-types")
	types.GET("", h.ListTaskTypes)
	types.GET("/:id", h.GetTaskType)
	types.POST("", admin, h.CreateTaskType)
	types.PUT("/:id", admin, h.UpdateTaskType)
	types.DELETE("/:id", admin, h.DeleteTaskType)

	rg.POST("/task-logs", h.LogTask)
	rg.GET("/task-logs", h.ListTaskLogs)
}

// ListTaskTypes lists task types; ?active=true hides inactive ones
func (h *TaskHandler) ListTaskTypes(c *gin.Context) {
	types, err := h.taskService.ListTaskTypes(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *TaskHandler) GetTaskType(c *gin.Context) {
	taskType, err := h.taskService.GetTaskType(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskType)
}

func (h *TaskHandler) CreateTaskType(c *gin.Context) {
	var req services.TaskTypeInput
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskService.CreateTaskType(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskType)
}

func (h *TaskHandler) UpdateTaskType(c *gin.Context) {
	var req services.TaskTypeInput
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskService.UpdateTaskType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskType)
}

func (h *TaskHandler) DeleteTaskType(c *gin.Context) {
	if err := h.taskService.DeleteTaskType(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogTask records work done by the caller and credits XP
func (h *TaskHandler) LogTask(c *gin.Context) {
	var req services.LogTaskInput
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.taskService.LogTask(c.Request.Context(), Identity(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListTaskLogs lists the caller's task logs
func (h *TaskHandler) ListTaskLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	logs, err := h.taskService.ListTaskLogs(c.Request.Context(), Identity(c).UID, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
