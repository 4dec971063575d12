package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/storage"
	"hoyhub/backend/internal/utils"
)

// RestHotelHandler handles hotel management and booking endpoints.
type RestHotelHandler struct {
	hotelService   services.IHotelService
	userService    services.IUserService
	storageService storage.IS3Storage
	taskClient     IAsynqClient
}

// NewRestHotelHandler creates a new RestHotelHandler.
func NewRestHotelHandler(hotelService services.IHotelService, userService services.IUserService, storageService storage.IS3Storage, taskClient IAsynqClient) *RestHotelHandler {
	return &RestHotelHandler{
		hotelService:   hotelService,
		userService:    userService,
		storageService: storageService,
		taskClient:     taskClient,
	}
}

type hotelRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	City        string            `json:"city" binding:"required"`
	Address     string            `json:"address"`
	RoomTypes   []models.RoomType `json:"room_types" binding:"required,min=1,dive"`
	Amenities   map[string]bool   `json:"amenities"`
	Images      []string          `json:"images"`
}

// writeHotelError translates service errors into HTTP responses.
func writeHotelError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrHotelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
	case errors.Is(err, services.ErrNotHotelOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrBookingConflict):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// CreateHotel handles POST /v1/my/hotels
func (h *RestHotelHandler) CreateHotel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req hotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	hotel := &models.Hotel{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Location:    models.HotelLocation{City: req.City, Address: req.Address},
		RoomTypes:   req.RoomTypes,
		Amenities:   req.Amenities,
		Images:      req.Images,
	}
	if hotel.Images == nil {
		hotel.Images = []string{}
	}

	created, err := h.hotelService.Create(c.Request.Context(), hotel)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hotel"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMyHotels handles GET /v1/my/hotels
func (h *RestHotelHandler) ListMyHotels(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	hotels, err := h.hotelService.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list hotels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hotels})
}

// UpdateHotel handles PUT /v1/my/hotels/:id
func (h *RestHotelHandler) UpdateHotel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	hotelID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID format"})
		return
	}

	var req hotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	updates := bson.M{
		"name":        req.Name,
		"description": req.Description,
		"location":    models.HotelLocation{City: req.City, Address: req.Address},
		"room_types":  req.RoomTypes,
		"amenities":   req.Amenities,
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}

	hotel, err := h.hotelService.Update(c.Request.Context(), hotelID, userID, updates)
	if err != nil {
		writeHotelError(c, err, "Failed to update hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// GetHotel handles GET /v1/hotels/:slugOrID (public)
func (h *RestHotelHandler) GetHotel(c *gin.Context) {
	hotel, err := h.hotelService.FindBySlugOrID(c.Request.Context(), c.Param("slugOrID"))
	if err != nil {
		writeHotelError(c, err, "Failed to load hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

type presignHotelImageRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignHotelImage handles POST /v1/my/hotels/:id/images
func (h *RestHotelHandler) PresignHotelImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	hotelID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID format"})
		return
	}

	var req presignHotelImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and content_type are required"})
		return
	}

	// Ownership check via a no-op update.
	if _, err := h.hotelService.Update(c.Request.Context(), hotelID, userID, bson.M{}); err != nil {
		writeHotelError(c, err, "Failed to verify hotel ownership")
		return
	}

	uploadURL, key, err := h.storageService.GeneratePresignedPutURL(
		c.Request.Context(), userID.String(), storage.PurposeHotel, hotelID.String(), req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "key": key})
}

type createBookingRequest struct {
	RoomType string    `json:"room_type" binding:"required"`
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
	Guests   int       `json:"guests" binding:"required,gt=0"`
}

// CreateBooking handles POST /v1/hotels/:slugOrID/bookings
func (h *RestHotelHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	hotel, err := h.hotelService.FindBySlugOrID(c.Request.Context(), c.Param("slugOrID"))
	if err != nil {
		writeHotelError(c, err, "Failed to load hotel")
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking := &models.Booking{
		HotelID:  hotel.ID,
		UserID:   userID,
		RoomType: req.RoomType,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	}

	created, err := h.hotelService.CreateBooking(c.Request.Context(), booking)
	if err != nil {
		writeHotelError(c, err, "Failed to create booking")
		return
	}

	if h.taskClient != nil {
		if user, uerr := h.userService.FindByID(c.Request.Context(), userID); uerr == nil {
			_ = enqueueEmail(c.Request.Context(), h.taskClient, user.Email,
				"Booking request: "+hotel.Name,
				"Your booking request has been recorded. The hotel will confirm it shortly.")
		}
	}

	c.JSON(http.StatusCreated, created)
}

// ListHotelBookings handles GET /v1/my/hotels/:id/bookings (operator view)
func (h *RestHotelHandler) ListHotelBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	hotelID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID format"})
		return
	}

	// Ownership check via a no-op update.
	if _, err := h.hotelService.Update(c.Request.Context(), hotelID, userID, bson.M{}); err != nil {
		writeHotelError(c, err, "Failed to verify hotel ownership")
		return
	}

	bookings, err := h.hotelService.BookingsForHotel(c.Request.Context(), hotelID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// ListMyBookings handles GET /v1/my/bookings (guest view)
func (h *RestHotelHandler) ListMyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookings, err := h.hotelService.BookingsForGuest(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}
