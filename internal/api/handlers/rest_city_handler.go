package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

// RestCityHandler handles the city list used by search filters.
type RestCityHandler struct {
	cityService services.ICityService
}

// NewRestCityHandler creates a new RestCityHandler.
func NewRestCityHandler(cityService services.ICityService) *RestCityHandler {
	return &RestCityHandler{cityService: cityService}
}

// ListCities handles GET /v1/cities (public, active cities only)
func (h *RestCityHandler) ListCities(c *gin.Context) {
	cities, err := h.cityService.ListActive(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cities})
}

type createCityRequest struct {
	Name    string `json:"name" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// CreateCity handles POST /v1/admin/cities
func (h *RestCityHandler) CreateCity(c *gin.Context) {
	var req createCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and country are required"})
		return
	}

	city, err := h.cityService.Create(c.Request.Context(), &models.City{
		Name:    req.Name,
		Country: req.Country,
		Active:  true,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create city"})
		return
	}
	c.JSON(http.StatusCreated, city)
}

type setCityActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetCityActive handles PUT /v1/admin/cities/:id/active
func (h *RestCityHandler) SetCityActive(c *gin.Context) {
	cityID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid city ID format"})
		return
	}

	var req setCityActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	if err := h.cityService.SetActive(c.Request.Context(), cityID, *req.Active); err != nil {
		if errors.Is(err, services.ErrCityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update city"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
