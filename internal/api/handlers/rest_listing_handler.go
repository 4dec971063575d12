package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/storage"
	"hoyhub/backend/internal/utils"
)

// RestListingHandler handles REST requests for the owner dashboard and
// listing lifecycle.
type RestListingHandler struct {
	listingService services.IListingService
	userService    services.IUserService
	storageService storage.IS3Storage
	taskClient     IAsynqClient
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService, userService services.IUserService, storageService storage.IS3Storage, taskClient IAsynqClient) *RestListingHandler {
	return &RestListingHandler{
		listingService: listingService,
		userService:    userService,
		storageService: storageService,
		taskClient:     taskClient,
	}
}

// planTier resolves the caller's tier from their account document. Unknown
// users gate as free.
func (h *RestListingHandler) planTier(c *gin.Context, userID utils.SixID) plan.Tier {
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil || !user.PlanTier.Valid() {
		return plan.TierFree
	}
	return user.PlanTier
}

type listingDraftRequest struct {
	Title         string             `json:"title" binding:"required"`
	Description   string             `json:"description"`
	Area          string             `json:"area"`
	City          string             `json:"city"`
	Category      models.Category    `json:"category" binding:"required"`
	IsForSale     bool               `json:"is_for_sale"`
	Price         float64            `json:"price"`
	DiscountPrice *float64           `json:"discount_price"`
	Features      *models.Features   `json:"features"`
	NewImageURLs  []string           `json:"new_image_urls"`
}

func (r listingDraftRequest) toDraft() services.ListingDraft {
	return services.ListingDraft{
		Title:         r.Title,
		Description:   r.Description,
		Area:          r.Area,
		City:          r.City,
		Category:      r.Category,
		IsForSale:     r.IsForSale,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Features:      r.Features,
		NewImageURLs:  r.NewImageURLs,
	}
}

// Dashboard handles GET /v1/my/listings?tab=&q=&sort=
// The full owner set is loaded and filtered in memory: search first, then the
// archived gate, then the tab predicate.
func (h *RestListingHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tab := services.ParseTab(c.DefaultQuery("tab", "all"))

	listings, err := h.listingService.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listings"})
		return
	}

	filtered := services.FilterDashboard(listings, tab, c.Query("q"))
	services.SortDashboard(filtered, services.SortKey(c.DefaultQuery("sort", "newest")))

	c.JSON(http.StatusOK, gin.H{
		"data":  filtered,
		"total": len(listings),
	})
}

// CreateListing handles POST /v1/my/listings
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req listingDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), userID, h.planTier(c, userID), req.toDraft())
	if err != nil {
		h.writeListingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// OpenEditor handles GET /v1/my/listings/:id/edit
// Free-tier listings inside the cooldown come back 423 with the remaining
// hours so the client can render the countdown.
func (h *RestListingHandler) OpenEditor(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.OpenEditor(c.Request.Context(), listingID, userID, h.planTier(c, userID))
	if err != nil {
		h.writeListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// UpdateListing handles PUT /v1/my/listings/:id
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req listingDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), listingID, userID, h.planTier(c, userID), req.toDraft())
	if err != nil {
		h.writeListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ToggleSold handles POST /v1/my/listings/:id/toggle-sold
func (h *RestListingHandler) ToggleSold(c *gin.Context) {
	h.toggle(c, h.listingService.ToggleSoldStatus)
}

// ToggleArchive handles POST /v1/my/listings/:id/toggle-archive
func (h *RestListingHandler) ToggleArchive(c *gin.Context) {
	h.toggle(c, h.listingService.ToggleArchive)
}

func (h *RestListingHandler) toggle(c *gin.Context, op func(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := op(c.Request.Context(), listingID, userID)
	if err != nil {
		h.writeListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /v1/my/listings/:id
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), listingID, userID); err != nil {
		h.writeListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type presignImageRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignListingImage handles POST /v1/my/listings/:id/images
// Returns a presigned PUT URL; the worker picks the blob up after upload.
func (h *RestListingHandler) PresignListingImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req presignImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	// Ownership check before handing out upload credentials.
	if _, err := h.listingService.OpenEditor(c.Request.Context(), listingID, userID, plan.TierPro); err != nil {
		h.writeListingError(c, err)
		return
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(
		c.Request.Context(), userID.String(), storage.PurposeListing, listingID.String(), req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload"})
		return
	}

	if err := enqueueImageProcess(c.Request.Context(), h.taskClient, key, listingID); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue image processing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": url, "key": key})
}

// GetListingByID handles GET /v1/property/:id (public detail page).
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	c.JSON(http.StatusOK, listing)
}

// writeListingError maps service errors onto HTTP statuses.
func (h *RestListingHandler) writeListingError(c *gin.Context, err error) {
	var lockErr *services.EditLockedError
	var valErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrListingLimitReached):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "upgrade_required": true})
	case errors.As(err, &lockErr):
		c.JSON(http.StatusLocked, gin.H{"error": lockErr.Error(), "hours_remaining": lockErr.HoursRemaining})
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "messages": valErr.Messages})
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Listing operation failed"})
	}
}
