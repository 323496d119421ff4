package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snagasawa/production-management-api/internal/dto"
	apierrors "github.com/snagasawa/production-management-api/internal/errors"
	"github.com/snagasawa/production-management-api/internal/middleware"
	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/services"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// TodoHandler coordinates todo-related HTTP handlers.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns the caller's todos
func (h *TodoHandler) ListTodos(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTodosInput{
		Owner:    identity,
		Page:     params.Page,
		PageSize: params.Limit,
		DueToday: c.Query("due_today") == "true",
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TodoStatus(statusStr)
		if status != models.TodoStatusOpen && status != models.TodoStatusDone {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	todos, total, err := h.todoService.ListTodos(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch todos")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, params, total))
}

// GetTodo returns a specific todo by ID
func (h *TodoHandler) GetTodo(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return
	}

	todo, err := h.todoService.GetTodo(identity, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTodoRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	todo, err := h.todoService.CreateTodo(services.CreateTodoInput{
		Owner:       identity,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// UpdateTodo updates an existing todo
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTodoInput{}

	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.TodoStatus(statusStr)
		if status != models.TodoStatusOpen && status != models.TodoStatusDone {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if _, ok := rawReq["due_date"]; ok {
		// due_date was provided (might be null)
		if rawReq["due_date"] == nil {
			input.ClearDueDate = true
		} else if dueDateStr, ok := rawReq["due_date"].(string); ok {
			parsedTime, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date format")
				return
			}
			input.DueDate = &parsedTime
		}
	}

	todo, err := h.todoService.UpdateTodo(identity, todoID, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// ToggleTodoStatus flips a todo between open and done
func (h *TodoHandler) ToggleTodoStatus(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return
	}

	todo, err := h.todoService.ToggleTodoStatus(identity, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo deletes a todo
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return
	}

	if err := h.todoService.DeleteTodo(identity, todoID); err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo deleted successfully",
	})
}

func respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTodoTitleRequired),
		errors.Is(err, services.ErrTodoTitleEmpty):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
