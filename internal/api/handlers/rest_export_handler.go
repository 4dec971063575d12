package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
)

// RestExportHandler serves the public read-only export that merges the
// current property listings with the agent directory. Consumed by partner
// sites and the static sitemap generator.
type RestExportHandler struct {
	listingService services.IListingService
	userService    services.IUserService
}

// NewRestExportHandler creates a new RestExportHandler.
func NewRestExportHandler(listingService services.IListingService, userService services.IUserService) *RestExportHandler {
	return &RestExportHandler{listingService: listingService, userService: userService}
}

// exportPayload is the wire shape of the public export. Agents are keyed by
// user ID so listings can be joined client-side without a second pass.
type exportPayload struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	Properties  []models.Listing               `json:"properties"`
	Agents      map[string]models.AgentProfile `json:"agents"`
}

// Export handles GET /v1/export?city=
func (h *RestExportHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	city := c.Query("city")

	listings, err := h.listingService.SearchPublic(ctx, services.PropertySearchParams{City: city})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export properties"})
		return
	}

	agents, err := h.userService.ListAgents(ctx, city)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export agents"})
		return
	}

	byUser := make(map[string]models.AgentProfile, len(agents))
	for _, agent := range agents {
		byUser[agent.UserID.String()] = agent
	}

	c.JSON(http.StatusOK, exportPayload{
		GeneratedAt: time.Now().UTC(),
		Properties:  listings,
		Agents:      byUser,
	})
}
