package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/snagasawa/production-management-api/internal/constants"
	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/repository"
	"github.com/snagasawa/production-management-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TodoHandlerTestSuite defines the test suite for TodoHandler
type TodoHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TodoHandler
}

// SetupTest runs before each test
func (suite *TodoHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(&models.Todo{})
	suite.Require().NoError(err)

	todoRepo := repository.NewTodoRepository(suite.db)
	suite.handler = NewTodoHandler(services.NewTodoService(todoRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TodoHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TodoHandlerTestSuite) createTestTodo(ownerID uint64, title string, dueDate *time.Time) *models.Todo {
	todo := &models.Todo{
		OwnerID: ownerID,
		Title:   title,
		Status:  models.TodoStatusOpen,
		DueDate: dueDate,
	}
	suite.db.Create(todo)
	return todo
}

// Helper function to create a context with a resolved identity
func (suite *TodoHandlerTestSuite) createOwnedContext(method, url string, body []byte, identity models.Identity) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyIdentity, identity)

	return c, w
}

func (suite *TodoHandlerTestSuite) identity() models.Identity {
	return models.Identity{UserID: 1}
}

// TestListTodos_Success tests successful todo listing
func (suite *TodoHandlerTestSuite) TestListTodos_Success() {
	identity := suite.identity()
	todo := suite.createTestTodo(identity.OwnerID(), "Write report", nil)
	suite.createTestTodo(99, "Someone else's todo", nil)

	c, w := suite.createOwnedContext("GET", "/api/todos", nil, identity)

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "todos")
	assert.Contains(suite.T(), response, "pagination")

	todos := response["todos"].([]interface{})
	suite.Require().Len(todos, 1)
	assert.Equal(suite.T(), todo.Title, todos[0].(map[string]interface{})["title"])
}

// TestListTodos_DueToday tests the due_today filter
func (suite *TodoHandlerTestSuite) TestListTodos_DueToday() {
	identity := suite.identity()
	now := time.Now()
	nextWeek := now.AddDate(0, 0, 7)
	suite.createTestTodo(identity.OwnerID(), "Due today", &now)
	suite.createTestTodo(identity.OwnerID(), "Due next week", &nextWeek)
	suite.createTestTodo(identity.OwnerID(), "No due date", nil)

	c, w := suite.createOwnedContext("GET", "/api/todos", nil, identity)
	c.Request.URL.RawQuery = "due_today=true"

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	todos := response["todos"].([]interface{})
	suite.Require().Len(todos, 1)
	assert.Equal(suite.T(), "Due today", todos[0].(map[string]interface{})["title"])
}

// TestListTodos_InvalidStatusFilter tests an unknown status value
func (suite *TodoHandlerTestSuite) TestListTodos_InvalidStatusFilter() {
	c, w := suite.createOwnedContext("GET", "/api/todos", nil, suite.identity())
	c.Request.URL.RawQuery = "status=ARCHIVED"

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTodo_Success tests successful todo creation
func (suite *TodoHandlerTestSuite) TestCreateTodo_Success() {
	identity := suite.identity()

	requestBody := map[string]interface{}{
		"title":       "New Todo",
		"description": "Details",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/todos", body, identity)

	suite.handler.CreateTodo(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Todo", response["title"])
	assert.Equal(suite.T(), string(models.TodoStatusOpen), response["status"])
}

// TestCreateTodo_MissingTitle tests creation without a title
func (suite *TodoHandlerTestSuite) TestCreateTodo_MissingTitle() {
	body, _ := json.Marshal(map[string]interface{}{"description": "no title"})

	c, w := suite.createOwnedContext("POST", "/api/todos", body, suite.identity())

	suite.handler.CreateTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTodo_ClearsDueDate tests that an explicit null due_date clears it
func (suite *TodoHandlerTestSuite) TestUpdateTodo_ClearsDueDate() {
	identity := suite.identity()
	now := time.Now()
	todo := suite.createTestTodo(identity.OwnerID(), "With due date", &now)

	body := []byte(`{"due_date": null, "title": "Updated"}`)

	c, w := suite.createOwnedContext("PATCH", "/api/todos/1", body, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Todo
	suite.Require().NoError(suite.db.First(&reloaded, todo.ID).Error)
	assert.Nil(suite.T(), reloaded.DueDate)
	assert.Equal(suite.T(), "Updated", reloaded.Title)
}

// TestToggleTodoStatus tests flipping a todo between open and done
func (suite *TodoHandlerTestSuite) TestToggleTodoStatus() {
	identity := suite.identity()
	todo := suite.createTestTodo(identity.OwnerID(), "Toggle me", nil)

	c, w := suite.createOwnedContext("POST", "/api/todos/1/toggle", nil, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.ToggleTodoStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Todo
	suite.Require().NoError(suite.db.First(&reloaded, todo.ID).Error)
	assert.Equal(suite.T(), models.TodoStatusDone, reloaded.Status)
}

// TestDeleteTodo_Success tests todo deletion
func (suite *TodoHandlerTestSuite) TestDeleteTodo_Success() {
	identity := suite.identity()
	suite.createTestTodo(identity.OwnerID(), "Delete me", nil)

	c, w := suite.createOwnedContext("DELETE", "/api/todos/1", nil, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var total int64
	suite.db.Model(&models.Todo{}).Count(&total)
	assert.Equal(suite.T(), int64(0), total)
}

// TestGetTodo_NotFound tests fetching another owner's todo
func (suite *TodoHandlerTestSuite) TestGetTodo_NotFound() {
	suite.createTestTodo(99, "Not yours", nil)

	c, w := suite.createOwnedContext("GET", "/api/todos/1", nil, suite.identity())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestListTodos_Unauthorized tests listing without a resolved identity
func (suite *TodoHandlerTestSuite) TestListTodos_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/todos", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestTodoHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TodoHandlerTestSuite))
}
