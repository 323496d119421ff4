package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound      = errors.New("todo not found")
	ErrTodoTitleRequired = errors.New("title is required")
	ErrTodoTitleEmpty    = errors.New("title cannot be empty")
)

// TodoService handles todo business logic
type TodoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
	}
}

// ListTodosInput represents filters for listing todos
type ListTodosInput struct {
	Owner    models.Identity
	Status   *models.TodoStatus
	DueToday bool
	Page     int
	PageSize int
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Owner       models.Identity
	Title       string
	Description string
	DueDate     *time.Time
}

// UpdateTodoInput represents input for updating a todo
type UpdateTodoInput struct {
	Title        *string
	Description  *string
	Status       *models.TodoStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// ListTodos returns the owner's todos matching the provided filters
func (s *TodoService) ListTodos(input ListTodosInput) ([]models.Todo, int64, error) {
	filter := repository.TodoFilter{
		OwnerID:  input.Owner.OwnerID(),
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	todos, total, err := s.todoRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, total, nil
}

// GetTodo returns a single todo
func (s *TodoService) GetTodo(owner models.Identity, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(owner.OwnerID(), todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// CreateTodo creates a new todo for the owner
func (s *TodoService) CreateTodo(input CreateTodoInput) (*models.Todo, error) {
	if input.Title == "" {
		return nil, ErrTodoTitleRequired
	}

	todo := &models.Todo{
		OwnerID:     input.Owner.OwnerID(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TodoStatusOpen,
		DueDate:     input.DueDate,
	}

	if err := s.todoRepo.Create(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// UpdateTodo updates an existing todo
func (s *TodoService) UpdateTodo(owner models.Identity, todoID uint64, input UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(owner.OwnerID(), todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTodoTitleEmpty
		}
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Status != nil {
		todo.Status = *input.Status
	}
	if input.ClearDueDate {
		todo.DueDate = nil
	} else if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// ToggleTodoStatus toggles a todo between open and done
func (s *TodoService) ToggleTodoStatus(owner models.Identity, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(owner.OwnerID(), todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if todo.Status == models.TodoStatusDone {
		todo.Status = models.TodoStatusOpen
	} else {
		todo.Status = models.TodoStatusDone
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	return todo, nil
}

// DeleteTodo deletes a todo
func (s *TodoService) DeleteTodo(owner models.Identity, todoID uint64) error {
	if _, err := s.todoRepo.FindByID(owner.OwnerID(), todoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to find todo: %w", err)
	}

	if err := s.todoRepo.Delete(owner.OwnerID(), todoID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}
