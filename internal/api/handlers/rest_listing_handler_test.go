package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"hoyhub/backend/internal/api/handlers"
	"hoyhub/backend/internal/api/middleware"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

// --- Tests ---

// fakeAuth injects the user ID the way the auth middleware would.
func fakeAuth(userID utils.SixID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID.String())
		c.Next()
	}
}

func freeUser(userID utils.SixID) *models.User {
	return &models.User{
		Base:     models.Base{ID: userID},
		Name:     "Test Agent",
		Email:    "agent@example.com",
		Role:     models.RoleAgent,
		PlanTier: plan.TierFree,
	}
}

func validDraftBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Two bedroom apartment",
		"category": "residential",
		"city":     "Hargeisa",
		"price":    45000,
		"features": map[string]interface{}{
			"residential": map[string]interface{}{"bedrooms": 2, "bathrooms": 1},
		},
		"new_image_urls": []string{"https://img.example.com/a.jpg"},
	})
	return body
}

func TestRestListingHandler_Dashboard_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestListingHandler(mockListingSvc, mockUserSvc, nil, nil)

	userID := utils.NewSixID()
	r := gin.New()
	r.GET("/v1/my/listings", fakeAuth(userID), handler.Dashboard)

	listings := []models.Listing{
		{Base: models.Base{ID: utils.NewSixID()}, OwnerID: userID, Title: "Beach villa", Status: models.StatusAvailable},
		{Base: models.Base{ID: utils.NewSixID()}, OwnerID: userID, Title: "Old shop", Status: models.StatusSold},
		{Base: models.Base{ID: utils.NewSixID()}, OwnerID: userID, Title: "Archived plot", Status: models.StatusAvailable, Archived: true},
	}
	mockListingSvc.On("ListForOwner", mock.Anything, userID).Return(listings, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/listings?tab=active", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	data, ok := respBody["data"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, data, 1) // sold and archived filtered out by the active tab
	assert.Equal(t, float64(3), respBody["total"])
	mockListingSvc.AssertExpectations(t)
}

func TestRestListingHandler_Dashboard_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewRestListingHandler(new(MockListingService), new(MockUserService), nil, nil)

	r := gin.New()
	r.GET("/v1/my/listings", handler.Dashboard) // no auth middleware

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/my/listings", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRestListingHandler_CreateListing_LimitReached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestListingHandler(mockListingSvc, mockUserSvc, nil, nil)

	userID := utils.NewSixID()
	r := gin.New()
	r.POST("/v1/my/listings", fakeAuth(userID), handler.CreateListing)

	mockUserSvc.On("FindByID", mock.Anything, userID).Return(freeUser(userID), nil)
	mockListingSvc.On("Create", mock.Anything, userID, plan.TierFree, mock.AnythingOfType("services.ListingDraft")).
		Return(nil, services.ErrListingLimitReached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/my/listings", bytes.NewReader(validDraftBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, true, respBody["upgrade_required"])
	mockListingSvc.AssertExpectations(t)
}

func TestRestListingHandler_UpdateListing_EditLocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestListingHandler(mockListingSvc, mockUserSvc, nil, nil)

	userID := utils.NewSixID()
	listingID := utils.NewSixID()
	r := gin.New()
	r.PUT("/v1/my/listings/:id", fakeAuth(userID), handler.UpdateListing)

	mockUserSvc.On("FindByID", mock.Anything, userID).Return(freeUser(userID), nil)
	mockListingSvc.On("Update", mock.Anything, listingID, userID, plan.TierFree, mock.AnythingOfType("services.ListingDraft")).
		Return(nil, &services.EditLockedError{HoursRemaining: 17})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/my/listings/"+listingID.String(), bytes.NewReader(validDraftBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusLocked, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, float64(17), respBody["hours_remaining"])
	mockListingSvc.AssertExpectations(t)
}

func TestRestListingHandler_UpdateListing_ValidationFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	mockUserSvc := new(MockUserService)
	handler := handlers.NewRestListingHandler(mockListingSvc, mockUserSvc, nil, nil)

	userID := utils.NewSixID()
	listingID := utils.NewSixID()
	r := gin.New()
	r.PUT("/v1/my/listings/:id", fakeAuth(userID), handler.UpdateListing)

	mockUserSvc.On("FindByID", mock.Anything, userID).Return(freeUser(userID), nil)
	mockListingSvc.On("Update", mock.Anything, listingID, userID, plan.TierFree, mock.AnythingOfType("services.ListingDraft")).
		Return(nil, &services.ValidationError{Messages: []string{"description is limited to 100 characters on the free plan"}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/my/listings/"+listingID.String(), bytes.NewReader(validDraftBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	messages, ok := respBody["messages"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, messages, 1)
	mockListingSvc.AssertExpectations(t)
}

func TestRestListingHandler_GetListingByID_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockListingSvc, new(MockUserService), nil, nil)

	r := gin.New()
	r.GET("/v1/property/:id", handler.GetListingByID)

	listingID := utils.NewSixID()
	mockListingSvc.On("FindByID", mock.Anything, listingID).Return(nil, mongo.ErrNoDocuments)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/property/"+listingID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockListingSvc.AssertExpectations(t)
}

func TestRestListingHandler_PresignListingImage_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockListingSvc := new(MockListingService)
	mockUserSvc := new(MockUserService)
	mockStorage := new(MockS3Storage)
	mockClient := new(MockAsynqClient)
	handler := handlers.NewRestListingHandler(mockListingSvc, mockUserSvc, mockStorage, mockClient)

	userID := utils.NewSixID()
	listingID := utils.NewSixID()
	r := gin.New()
	r.POST("/v1/my/listings/:id/images", fakeAuth(userID), handler.PresignListingImage)

	owned := &models.Listing{Base: models.Base{ID: listingID}, OwnerID: userID}
	// Ownership is checked with a paid tier so the cooldown never blocks uploads.
	mockListingSvc.On("OpenEditor", mock.Anything, listingID, userID, plan.TierPro).Return(owned, nil)
	mockStorage.On("GeneratePresignedPutURL", mock.Anything, userID.String(), mock.Anything, listingID.String(), "house.jpg", "image/jpeg").
		Return("https://s3.example.com/put", "property_images/key.jpg", nil)
	mockClient.On("EnqueueContext", mock.Anything, mock.AnythingOfType("*asynq.Task"), mock.Anything).
		Return(&asynq.TaskInfo{ID: "task-1"}, nil)

	body, _ := json.Marshal(map[string]string{"filename": "house.jpg", "content_type": "image/jpeg"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/my/listings/"+listingID.String()+"/images", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "https://s3.example.com/put", respBody["upload_url"])
	assert.Equal(t, "property_images/key.jpg", respBody["key"])
	mockListingSvc.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
	mockClient.AssertExpectations(t)
}
