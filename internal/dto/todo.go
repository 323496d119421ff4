package dto

import (
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TodoStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO                `json:"todos"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Status:      todo.Status,
		DueDate:     todo.DueDate,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

// ToTodoListResponse converts a slice of todos to TodoListResponse
func ToTodoListResponse(todos []models.Todo, params utils.PaginationParams, total int64) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}

	return TodoListResponse{
		Todos: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
