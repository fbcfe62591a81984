package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/fortyacres/property-chat/internal/handlers"
	"github.com/fortyacres/property-chat/internal/middleware"
	"github.com/fortyacres/property-chat/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	propertyH *handlers.PropertyHandler,
	chatH *handlers.ChatHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), authH.Logout)
	}

	// API endpoints
	api := r.Group("/api", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/users/me", userH.GetMe)
		api.PATCH("/users/me", userH.UpdateMe)
		api.GET("/users/:id", userH.GetUser)

		api.GET("/properties", propertyH.ListProperties)
		api.POST("/properties", propertyH.CreateProperty)
		api.GET("/properties/:id", propertyH.GetProperty)
		api.PATCH("/properties/:id", propertyH.UpdateProperty)
		api.POST("/properties/:id/invest", propertyH.Invest)

		api.GET("/properties/:id/chat/messages", chatH.GetMessages)
		api.GET("/properties/:id/chat/archive", chatH.GetArchive)
		api.GET("/properties/:id/chat/rooms", chatH.ListRooms)
		api.POST("/properties/:id/chat/rooms", chatH.CreateRoom)
		api.DELETE("/properties/:id/chat/rooms/:roomId", chatH.DeleteRoom)
	}

	// WebSocket endpoint; identity comes from the connection parameters
	r.GET("/ws/chat", wsH.HandleWebSocket)
}
