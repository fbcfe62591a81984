package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/fortyacres/property-chat/internal/chat"
	"github.com/fortyacres/property-chat/internal/database"
	"github.com/fortyacres/property-chat/internal/middleware"
	"github.com/fortyacres/property-chat/internal/models"
)

// ChatHandler exposes the coordinator's state over plain HTTP for clients
// that are not holding a socket: recent history, active rooms, and room
// management.
type ChatHandler struct {
	db    *database.Database
	coord *chat.Coordinator
}

func NewChatHandler(db *database.Database, coord *chat.Coordinator) *ChatHandler {
	return &ChatHandler{db: db, coord: coord}
}

// GetMessages returns the live in-memory tail for a property.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	limit := chat.HistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= chat.HistoryLimit {
			limit = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{"messages": h.coord.Recent(propertyID, limit)})
}

// GetArchive pages through the persisted history for a property.
func (h *ChatHandler) GetArchive(c *gin.Context) {
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		if id, err := uuid.Parse(before); err == nil {
			beforeID = &id
		}
	}

	messages, err := h.db.GetPropertyMessages(propertyID, limit, beforeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := lo.Map(messages, func(msg models.ChatMessage, _ int) gin.H {
		return gin.H{
			"id":          msg.ID,
			"property_id": msg.PropertyID,
			"user_id":     msg.UserID,
			"user_name":   msg.UserName,
			"kind":        msg.Kind,
			"content":     msg.Content,
			"metadata":    msg.Metadata,
			"created_at":  msg.CreatedAt,
		}
	})

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}

// ListRooms returns the active meeting rooms for a property.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": h.coord.Rooms(propertyID)})
}

// CreateRoom creates a meeting room on behalf of the authenticated user. The
// same notifications fire as for a room created over the socket.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	var req struct {
		Name         string     `json:"name" binding:"required"`
		ScheduledFor *time.Time `json:"scheduled_for"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := h.coord.CreateRoom(propertyID, userID.String(), req.Name, req.ScheduledFor)
	c.JSON(http.StatusCreated, room)
}

// DeleteRoom removes a meeting room. Unknown ids report not found but leave
// the coordinator untouched.
func (h *ChatHandler) DeleteRoom(c *gin.Context) {
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	if !h.coord.RemoveRoom(propertyID, c.Param("roomId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room removed"})
}
