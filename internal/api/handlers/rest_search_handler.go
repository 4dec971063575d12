package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
)

// RestSearchHandler handles the public property and hotel search endpoints.
type RestSearchHandler struct {
	listingService services.IListingService
	hotelService   services.IHotelService
}

// NewRestSearchHandler creates a new RestSearchHandler.
func NewRestSearchHandler(listingService services.IListingService, hotelService services.IHotelService) *RestSearchHandler {
	return &RestSearchHandler{listingService: listingService, hotelService: hotelService}
}

// SearchProperties handles GET /v1/property/search?mode=&city=&category=&price=
// mode is "buy" or "rent"; anything else searches both. price is the raw
// bucket string from the UI picker.
func (h *RestSearchHandler) SearchProperties(c *gin.Context) {
	params := services.PropertySearchParams{
		City:     c.Query("city"),
		Category: models.Category(c.Query("category")),
		Bucket:   c.Query("price"),
	}

	switch c.Query("mode") {
	case "buy":
		forSale := true
		params.ForSale = &forSale
	case "rent":
		forSale := false
		params.ForSale = &forSale
	}

	results, err := h.listingService.SearchPublic(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
}

// SearchHotels handles GET /v1/hotels/search?city=&price=
func (h *RestSearchHandler) SearchHotels(c *gin.Context) {
	results, err := h.hotelService.Search(c.Request.Context(), services.HotelSearchParams{
		City:   c.Query("city"),
		Bucket: c.Query("price"),
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
}
