package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"hoyhub/backend/internal/services"
)

// RestChatHandler handles the in-app chat endpoints, including the
// websocket subscription feed.
type RestChatHandler struct {
	chatService services.IChatService
	upgrader    websocket.Upgrader
}

// NewRestChatHandler creates a new RestChatHandler.
func NewRestChatHandler(chatService services.IChatService) *RestChatHandler {
	return &RestChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API already gates access by JWT; origin checks belong to CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// channelMember reports whether userID is one of the two participants encoded
// in a channel ID ("a_b_context", participants sorted).
func channelMember(channelID, userID string) bool {
	parts := strings.SplitN(channelID, "_", 3)
	if len(parts) < 2 {
		return false
	}
	return parts[0] == userID || parts[1] == userID
}

type openChannelRequest struct {
	PeerID    string `json:"peer_id" binding:"required"`
	PeerName  string `json:"peer_name"`
	OwnName   string `json:"own_name"`
	ContextID string `json:"context_id"`
}

// OpenChannel handles POST /v1/chats
func (h *RestChatHandler) OpenChannel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req openChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.PeerID == userID.String() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open a chat with yourself"})
		return
	}

	names := map[string]string{}
	if req.OwnName != "" {
		names[userID.String()] = req.OwnName
	}
	if req.PeerName != "" {
		names[req.PeerID] = req.PeerName
	}

	channel, err := h.chatService.Open(c.Request.Context(), userID.String(), req.PeerID, req.ContextID, names)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open chat"})
		return
	}
	c.JSON(http.StatusOK, channel)
}

// ListChannels handles GET /v1/my/chats
func (h *RestChatHandler) ListChannels(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channels, err := h.chatService.ListForParticipant(c.Request.Context(), userID.String())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": channels})
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage handles POST /v1/chats/:id/messages
func (h *RestChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID := c.Param("id")
	if !channelMember(channelID, userID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text is required"})
		return
	}

	message, err := h.chatService.Send(c.Request.Context(), channelID, userID.String(), req.Text)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, message)
}

// History handles GET /v1/chats/:id/messages
func (h *RestChatHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID := c.Param("id")
	if !channelMember(channelID, userID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), channelID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// Subscribe handles GET /v1/chats/:id/ws, upgrading to a websocket and
// pushing new messages on the channel until the client disconnects.
func (h *RestChatHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID := c.Param("id")
	if !channelMember(channelID, userID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		return
	}

	messages, cancel, err := h.chatService.Subscribe(c.Request.Context(), channelID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		// Upgrade has already written its own error response.
		return
	}

	go func() {
		defer cancel()
		defer conn.Close()
		// The read loop exists only to detect client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range messages {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("WARNING: chat websocket write failed for channel %s: %v", channelID, err)
			break
		}
	}
	cancel()
	conn.Close()
}
