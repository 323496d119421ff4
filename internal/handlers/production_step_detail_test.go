package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

// ProductionStepDetailHandlerTestSuite defines the test suite for
// ProductionStepDetailHandler
type ProductionStepDetailHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProductionStepDetailHandler
}

// SetupTest runs before each test
func (suite *ProductionStepDetailHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.Product{},
		&models.ProductionStep{},
		&models.ProductionStepDetail{},
	)
	suite.Require().NoError(err)

	detailRepo := repository.NewProductionStepDetailRepository(suite.db)
	suite.handler = NewProductionStepDetailHandler(services.NewProductionStepDetailService(detailRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProductionStepDetailHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *ProductionStepDetailHandlerTestSuite) createTestProduct(ownerID uint64, name string) *models.Product {
	product := &models.Product{OwnerID: ownerID, Name: name}
	suite.db.Create(product)
	return product
}

func (suite *ProductionStepDetailHandlerTestSuite) createTestStep(ownerID uint64, name string) *models.ProductionStep {
	step := &models.ProductionStep{OwnerID: ownerID, Name: name}
	suite.db.Create(step)
	return step
}

func (suite *ProductionStepDetailHandlerTestSuite) createTestDetail(ownerID, productID, stepID, sequence uint64) *models.ProductionStepDetail {
	detail := &models.ProductionStepDetail{
		OwnerID:          ownerID,
		ProductID:        productID,
		ProductionStepID: stepID,
		SequenceNumber:   sequence,
	}
	suite.db.Create(detail)
	return detail
}

// Helper function to create a context with a resolved identity
func (suite *ProductionStepDetailHandlerTestSuite) createOwnedContext(method, url string, body []byte, identity models.Identity) (*gin.Context, *httptest.ResponseRecorder) {
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

func (suite *ProductionStepDetailHandlerTestSuite) identity() models.Identity {
	return models.Identity{UserID: 1}
}

// TestBulkAssign_Success tests a clean bulk assignment
func (suite *ProductionStepDetailHandlerTestSuite) TestBulkAssign_Success() {
	identity := suite.identity()
	p1 := suite.createTestProduct(identity.OwnerID(), "Chair")
	p2 := suite.createTestProduct(identity.OwnerID(), "Table")
	s1 := suite.createTestStep(identity.OwnerID(), "Cutting")
	s2 := suite.createTestStep(identity.OwnerID(), "Assembly")

	requestBody := map[string]interface{}{
		"product_ids":         []uint64{p1.ID, p2.ID},
		"production_step_ids": []uint64{s1.ID, s2.ID},
		"default_values": map[string]interface{}{
			"sequence_start": 1,
			"auto_increment": true,
			"factory_price":  "10.50",
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details/bulk-assign", body, identity)

	suite.handler.BulkAssign(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["success"])

	summary := response["summary"].(map[string]interface{})
	assert.Equal(suite.T(), float64(4), summary["total_requested"])
	assert.Equal(suite.T(), float64(4), summary["created"])
	assert.Equal(suite.T(), float64(0), summary["skipped"])
	assert.Equal(suite.T(), float64(0), summary["failed"])

	data := response["data"].(map[string]interface{})
	created := data["created"].([]interface{})
	assert.Len(suite.T(), created, 4)

	first := created[0].(map[string]interface{})
	assert.Equal(suite.T(), "10.5", first["factory_price"])
}

// TestBulkAssign_PartialSkip tests that existing pairs come back in the
// skipped bucket and the call still succeeds
func (suite *ProductionStepDetailHandlerTestSuite) TestBulkAssign_PartialSkip() {
	identity := suite.identity()
	p1 := suite.createTestProduct(identity.OwnerID(), "Chair")
	s1 := suite.createTestStep(identity.OwnerID(), "Cutting")
	s2 := suite.createTestStep(identity.OwnerID(), "Assembly")
	suite.createTestDetail(identity.OwnerID(), p1.ID, s1.ID, 7)

	requestBody := map[string]interface{}{
		"product_ids":         []uint64{p1.ID},
		"production_step_ids": []uint64{s1.ID, s2.ID},
		"default_values": map[string]interface{}{
			"sequence_start": 1,
			"auto_increment": true,
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details/bulk-assign", body, identity)

	suite.handler.BulkAssign(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	summary := response["summary"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), summary["total_requested"])
	assert.Equal(suite.T(), float64(1), summary["created"])
	assert.Equal(suite.T(), float64(1), summary["skipped"])

	data := response["data"].(map[string]interface{})
	skipped := data["skipped"].([]interface{})
	assert.Len(suite.T(), skipped, 1)
	skippedPair := skipped[0].(map[string]interface{})
	assert.Equal(suite.T(), float64(p1.ID), skippedPair["product_id"])
	assert.Equal(suite.T(), float64(s1.ID), skippedPair["production_step_id"])
}

// TestBulkAssign_ValidationError tests that invalid input is rejected with
// field details before anything is written
func (suite *ProductionStepDetailHandlerTestSuite) TestBulkAssign_ValidationError() {
	identity := suite.identity()

	requestBody := map[string]interface{}{
		"product_ids":         []uint64{1},
		"production_step_ids": []uint64{1},
		"default_values": map[string]interface{}{
			"sequence_start": 0,
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details/bulk-assign", body, identity)

	suite.handler.BulkAssign(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "VALIDATION_FAILED", response["code"])

	details := response["details"].([]interface{})
	suite.Require().NotEmpty(details)
	firstDetail := details[0].(map[string]interface{})
	assert.Equal(suite.T(), "default_values.sequence_start", firstDetail["field"])

	var total int64
	suite.db.Model(&models.ProductionStepDetail{}).Count(&total)
	assert.Equal(suite.T(), int64(0), total)
}

// TestBulkAssign_EmptyProductList tests that an empty ID list gets the
// same field-detailed validation payload as any other invalid input
func (suite *ProductionStepDetailHandlerTestSuite) TestBulkAssign_EmptyProductList() {
	identity := suite.identity()

	requestBody := map[string]interface{}{
		"product_ids":         []uint64{},
		"production_step_ids": []uint64{1},
		"default_values": map[string]interface{}{
			"sequence_start": 1,
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details/bulk-assign", body, identity)

	suite.handler.BulkAssign(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "VALIDATION_FAILED", response["code"])

	details := response["details"].([]interface{})
	suite.Require().NotEmpty(details)
	firstDetail := details[0].(map[string]interface{})
	assert.Equal(suite.T(), "product_ids", firstDetail["field"])
}

// TestBulkAssign_Unauthorized tests the endpoint without a resolved identity
func (suite *ProductionStepDetailHandlerTestSuite) TestBulkAssign_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/production-step-details/bulk-assign", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.BulkAssign(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestCreateDetail_Success tests single assignment creation
func (suite *ProductionStepDetailHandlerTestSuite) TestCreateDetail_Success() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")

	requestBody := map[string]interface{}{
		"product_id":         product.ID,
		"production_step_id": step.ID,
		"sequence_number":    1,
		"calculated_price":   "3.00",
		"is_final_step":      true,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details", body, identity)

	suite.handler.CreateDetail(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(product.ID), response["product_id"])
	assert.Equal(suite.T(), float64(1), response["sequence_number"])
	assert.Equal(suite.T(), "3", response["calculated_price"])
	assert.Equal(suite.T(), true, response["is_final_step"])
}

// TestCreateDetail_Duplicate tests that assigning the same pair twice
// returns a conflict
func (suite *ProductionStepDetailHandlerTestSuite) TestCreateDetail_Duplicate() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	suite.createTestDetail(identity.OwnerID(), product.ID, step.ID, 1)

	requestBody := map[string]interface{}{
		"product_id":         product.ID,
		"production_step_id": step.ID,
		"sequence_number":    2,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createOwnedContext("POST", "/api/production-step-details", body, identity)

	suite.handler.CreateDetail(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestListDetails_FiltersByProduct tests the product_id query filter
func (suite *ProductionStepDetailHandlerTestSuite) TestListDetails_FiltersByProduct() {
	identity := suite.identity()
	p1 := suite.createTestProduct(identity.OwnerID(), "Chair")
	p2 := suite.createTestProduct(identity.OwnerID(), "Table")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	suite.createTestDetail(identity.OwnerID(), p1.ID, step.ID, 1)
	suite.createTestDetail(identity.OwnerID(), p2.ID, step.ID, 1)

	c, w := suite.createOwnedContext("GET", "/api/production-step-details", nil, identity)
	c.Request.URL.RawQuery = "product_id=1"

	suite.handler.ListDetails(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "details")
	assert.Contains(suite.T(), response, "pagination")

	details := response["details"].([]interface{})
	assert.Len(suite.T(), details, 1)
}

// TestListDetails_ScopedToOwner tests that another owner's rows are invisible
func (suite *ProductionStepDetailHandlerTestSuite) TestListDetails_ScopedToOwner() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	suite.createTestDetail(identity.OwnerID(), product.ID, step.ID, 1)
	suite.createTestDetail(99, product.ID, step.ID, 1)

	c, w := suite.createOwnedContext("GET", "/api/production-step-details", nil, identity)

	suite.handler.ListDetails(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	details := response["details"].([]interface{})
	assert.Len(suite.T(), details, 1)
}

// TestUpdateDetail_ClearsOnlyNulledPrice tests that an explicit null
// clears exactly the price it names; the other price is untouched
func (suite *ProductionStepDetailHandlerTestSuite) TestUpdateDetail_ClearsOnlyNulledPrice() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	detail := suite.createTestDetail(identity.OwnerID(), product.ID, step.ID, 1)
	suite.db.Model(detail).Updates(map[string]interface{}{"factory_price": "5.00", "calculated_price": "7.25"})

	body := []byte(`{"factory_price": null, "sequence_number": 4}`)

	c, w := suite.createOwnedContext("PATCH", "/api/production-step-details/1", body, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateDetail(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.ProductionStepDetail
	suite.Require().NoError(suite.db.First(&reloaded, detail.ID).Error)
	assert.Nil(suite.T(), reloaded.FactoryPrice)
	suite.Require().NotNil(reloaded.CalculatedPrice)
	assert.Equal(suite.T(), "7.25", *reloaded.CalculatedPrice)
	assert.Equal(suite.T(), uint64(4), reloaded.SequenceNumber)
}

// TestUpdateDetail_ClearsBothPricesWhenBothNulled tests clearing both
// prices in one request
func (suite *ProductionStepDetailHandlerTestSuite) TestUpdateDetail_ClearsBothPricesWhenBothNulled() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	detail := suite.createTestDetail(identity.OwnerID(), product.ID, step.ID, 1)
	suite.db.Model(detail).Updates(map[string]interface{}{"factory_price": "5.00", "calculated_price": "7.25"})

	body := []byte(`{"factory_price": null, "calculated_price": null}`)

	c, w := suite.createOwnedContext("PATCH", "/api/production-step-details/1", body, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateDetail(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.ProductionStepDetail
	suite.Require().NoError(suite.db.First(&reloaded, detail.ID).Error)
	assert.Nil(suite.T(), reloaded.FactoryPrice)
	assert.Nil(suite.T(), reloaded.CalculatedPrice)
}

// TestDeleteDetail_Success tests assignment removal
func (suite *ProductionStepDetailHandlerTestSuite) TestDeleteDetail_Success() {
	identity := suite.identity()
	product := suite.createTestProduct(identity.OwnerID(), "Chair")
	step := suite.createTestStep(identity.OwnerID(), "Cutting")
	detail := suite.createTestDetail(identity.OwnerID(), product.ID, step.ID, 1)

	c, w := suite.createOwnedContext("DELETE", "/api/production-step-details/1", nil, identity)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteDetail(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var total int64
	suite.db.Model(&models.ProductionStepDetail{}).Where("id = ?", detail.ID).Count(&total)
	assert.Equal(suite.T(), int64(0), total)
}

// TestGetDetail_NotFound tests fetching a missing assignment
func (suite *ProductionStepDetailHandlerTestSuite) TestGetDetail_NotFound() {
	identity := suite.identity()

	c, w := suite.createOwnedContext("GET", "/api/production-step-details/123", nil, identity)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	suite.handler.GetDetail(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestProductionStepDetailHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProductionStepDetailHandlerTestSuite))
}
