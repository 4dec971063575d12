package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"hoyhub/backend/internal/api/handlers"
	"hoyhub/backend/internal/api/middleware"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient, configSvc services.IConfigService) *gin.Engine {
	// Initialize services needed by API handlers.
	referralService := services.NewReferralService(db)
	userService := services.NewUserService(db, cfg)
	listingService := services.NewListingService(db, cfg, configSvc)
	hotelService := services.NewHotelService(db, cfg)
	orderService := services.NewOrderService(db, cfg)
	chatService := services.NewChatService(db, rdb)
	cityService := services.NewCityService(db)
	notificationService := services.NewNotificationService(db)
	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Global middleware first (order matters).
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers.
	restConfigHandler := handlers.NewRestConfigHandler(configSvc)
	restUserHandler := handlers.NewRestUserHandler(userService, taskClient)
	restListingHandler := handlers.NewRestListingHandler(listingService, userService, s3StorageService, taskClient)
	restSearchHandler := handlers.NewRestSearchHandler(listingService, hotelService)
	restHotelHandler := handlers.NewRestHotelHandler(hotelService, userService, s3StorageService, taskClient)
	restOrderHandler := handlers.NewRestOrderHandler(orderService, userService, taskClient)
	restChatHandler := handlers.NewRestChatHandler(chatService)
	restReferralHandler := handlers.NewRestReferralHandler(referralService)
	restCityHandler := handlers.NewRestCityHandler(cityService)
	restNotificationHandler := handlers.NewRestNotificationHandler(notificationService)
	restExportHandler := handlers.NewRestExportHandler(listingService, userService)

	v1 := r.Group("/v1")
	{
		// Public routes (rate limiting already applied globally).
		v1.GET("/config", restConfigHandler.GetPublicConfig)
		v1.POST("/auth/signup", restUserHandler.Signup)
		v1.POST("/auth/login", restUserHandler.Login)

		v1.GET("/property/search", restSearchHandler.SearchProperties)
		v1.GET("/property/:id", restListingHandler.GetListingByID)

		v1.GET("/hotels/search", restSearchHandler.SearchHotels)
		v1.GET("/hotels/:slugOrID", restHotelHandler.GetHotel)

		v1.GET("/agents", restUserHandler.ListAgents)
		v1.GET("/agents/:id", restUserHandler.GetAgentProfile)

		v1.GET("/cities", restCityHandler.ListCities)
		v1.GET("/referrals/leaderboard", restReferralHandler.Leaderboard)
		v1.GET("/export", restExportHandler.Export)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes.
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/me", restUserHandler.Me)
			authRequired.PUT("/my/agent-profile", restUserHandler.UpdateAgentProfile)

			authRequired.GET("/my/listings", restListingHandler.Dashboard)
			authRequired.POST("/my/listings", restListingHandler.CreateListing)
			authRequired.GET("/my/listings/:id/edit", restListingHandler.OpenEditor)
			authRequired.PUT("/my/listings/:id", restListingHandler.UpdateListing)
			authRequired.POST("/my/listings/:id/toggle-sold", restListingHandler.ToggleSold)
			authRequired.POST("/my/listings/:id/toggle-archive", restListingHandler.ToggleArchive)
			authRequired.DELETE("/my/listings/:id", restListingHandler.DeleteListing)
			authRequired.POST("/my/listings/:id/images", restListingHandler.PresignListingImage)

			authRequired.POST("/my/hotels", restHotelHandler.CreateHotel)
			authRequired.GET("/my/hotels", restHotelHandler.ListMyHotels)
			authRequired.PUT("/my/hotels/:id", restHotelHandler.UpdateHotel)
			authRequired.POST("/my/hotels/:id/images", restHotelHandler.PresignHotelImage)
			authRequired.GET("/my/hotels/:id/bookings", restHotelHandler.ListHotelBookings)
			authRequired.POST("/hotels/:slugOrID/bookings", restHotelHandler.CreateBooking)
			authRequired.GET("/my/bookings", restHotelHandler.ListMyBookings)

			authRequired.POST("/orders", restOrderHandler.CreateOrder)
			authRequired.GET("/my/orders", restOrderHandler.ListMyOrders)

			authRequired.POST("/chats", restChatHandler.OpenChannel)
			authRequired.GET("/my/chats", restChatHandler.ListChannels)
			authRequired.POST("/chats/:id/messages", restChatHandler.SendMessage)
			authRequired.GET("/chats/:id/messages", restChatHandler.History)
			authRequired.GET("/chats/:id/ws", restChatHandler.Subscribe)

			authRequired.GET("/my/referral-code", restReferralHandler.MyCode)

			authRequired.GET("/my/notifications", restNotificationHandler.ListNotifications)
			authRequired.POST("/my/notifications/:id/read", restNotificationHandler.MarkRead)
			authRequired.POST("/my/notifications/read-all", restNotificationHandler.MarkAllRead)
		}

		// Admin routes.
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.POST("/users/:id/plan", restUserHandler.SetPlanTier)
			adminRequired.POST("/cities", restCityHandler.CreateCity)
			adminRequired.PUT("/cities/:id/active", restCityHandler.SetCityActive)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine, bound to
// the internal port. Carries the shutdown hook and the captured-test-email
// retrieval used by end-to-end test runs.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // ["action_type", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [actionType, email]"})
				return
			}
			actionType := args[0]
			emailAddr := args[1]
			redisKey := fmt.Sprintf("mockemail:%s:%s", emailAddr, actionType)

			var emailJsonData string
			var getErr error
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ {
				emailJsonData, getErr = rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJsonData), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
