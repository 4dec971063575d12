package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/services"
)

// RestReferralHandler handles referral code and leaderboard endpoints.
type RestReferralHandler struct {
	referralService services.IReferralService
}

// NewRestReferralHandler creates a new RestReferralHandler.
func NewRestReferralHandler(referralService services.IReferralService) *RestReferralHandler {
	return &RestReferralHandler{referralService: referralService}
}

// MyCode handles GET /v1/my/referral-code, minting a code on first call.
func (h *RestReferralHandler) MyCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	referral, err := h.referralService.EnsureCode(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load referral code"})
		return
	}
	c.JSON(http.StatusOK, referral)
}

// Leaderboard handles GET /v1/referrals/leaderboard?limit=
func (h *RestReferralHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.referralService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
