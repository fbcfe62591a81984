package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fortyacres/property-chat/internal/chat"
)

// WebSocketHandler accepts chat connections scoped to one property.
type WebSocketHandler struct {
	coord    *chat.Coordinator
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(coord *chat.Coordinator) *WebSocketHandler {
	return &WebSocketHandler{
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the web client's domains settle
				return true
			},
		},
	}
}

// HandleWebSocket validates the required propertyId and userId parameters,
// upgrades the connection, and registers it with the coordinator. A request
// missing either parameter is refused before any registration happens.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Query("propertyId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "propertyId is required and must be an integer"})
		return
	}

	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := chat.NewClient(conn, userID, propertyID)
	h.coord.Register(client)

	go client.WritePump()
	go client.ReadPump(h.coord)
}
