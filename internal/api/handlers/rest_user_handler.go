package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

// RestUserHandler handles signup, login and profile endpoints.
type RestUserHandler struct {
	userService services.IUserService
	taskClient  IAsynqClient
}

// NewRestUserHandler creates a new RestUserHandler.
func NewRestUserHandler(userService services.IUserService, taskClient IAsynqClient) *RestUserHandler {
	return &RestUserHandler{userService: userService, taskClient: taskClient}
}

type signupRequest struct {
	Name         string      `json:"name" binding:"required"`
	Email        string      `json:"email" binding:"required,email"`
	Phone        string      `json:"phone"`
	Password     string      `json:"password" binding:"required,min=8"`
	Role         models.Role `json:"role" binding:"required"`
	ReferralCode string      `json:"referral_code"`
	AgencyName   string      `json:"agency_name"`
	City         string      `json:"city"`
	WhatsApp     string      `json:"whatsapp"`
	ServiceAreas []string    `json:"service_areas"`
}

// Signup handles POST /v1/auth/signup
func (h *RestUserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	switch req.Role {
	case models.RoleCustomer, models.RoleAgent, models.RoleHotel:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	result, err := h.userService.Signup(c.Request.Context(), services.SignupInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		Role:         req.Role,
		ReferralCode: req.ReferralCode,
		AgencyName:   req.AgencyName,
		City:         req.City,
		WhatsApp:     req.WhatsApp,
		ServiceAreas: req.ServiceAreas,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		return
	}

	// Welcome email and referral counting happen in the background; signup
	// never waits on SMTP or the referral write.
	if h.taskClient != nil {
		_ = enqueueEmail(c.Request.Context(), h.taskClient,
			result.User.Email, "Welcome to HoyHub", "Your account is ready. Post your first listing today.")
		if req.ReferralCode != "" {
			_ = enqueueReferralAward(c.Request.Context(), h.taskClient, req.ReferralCode)
		}
	}

	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login
func (h *RestUserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me handles GET /v1/me
func (h *RestUserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetAgentProfile handles GET /v1/agents/:id
func (h *RestUserHandler) GetAgentProfile(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID format"})
		return
	}

	profile, err := h.userService.AgentProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agent profile"})
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListAgents handles GET /v1/agents?city=
func (h *RestUserHandler) ListAgents(c *gin.Context) {
	profiles, err := h.userService.ListAgents(c.Request.Context(), c.Query("city"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

type agentProfileUpdateRequest struct {
	AgencyName   *string  `json:"agency_name"`
	Bio          *string  `json:"bio"`
	City         *string  `json:"city"`
	WhatsApp     *string  `json:"whatsapp"`
	ServiceAreas []string `json:"service_areas"`
}

// UpdateAgentProfile handles PUT /v1/my/agent-profile
func (h *RestUserHandler) UpdateAgentProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req agentProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := bson.M{}
	if req.AgencyName != nil {
		updates["agency_name"] = *req.AgencyName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.WhatsApp != nil {
		updates["whatsapp"] = *req.WhatsApp
	}
	if req.ServiceAreas != nil {
		updates["service_areas"] = req.ServiceAreas
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	profile, err := h.userService.UpdateAgentProfile(c.Request.Context(), userID, updates)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent profile not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type setPlanTierRequest struct {
	Tier plan.Tier `json:"tier" binding:"required"`
}

// SetPlanTier handles POST /v1/admin/users/:id/plan
// Fired by the operator after a plan upgrade order settles over WhatsApp.
func (h *RestUserHandler) SetPlanTier(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req setPlanTierRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Tier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan tier"})
		return
	}

	if err := h.userService.SetPlanTier(c.Request.Context(), userID, req.Tier); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set plan tier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
