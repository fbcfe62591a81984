package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/fortyacres/property-chat/internal/chat"
	"github.com/fortyacres/property-chat/internal/config"
	"github.com/fortyacres/property-chat/internal/database"
	"github.com/fortyacres/property-chat/internal/handlers"
	"github.com/fortyacres/property-chat/pkg/auth"
)

type Server struct {
	cfg    *config.Config
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Coord  *chat.Coordinator
}

func NewServer() *Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := &database.Database{}
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	coord := chat.NewCoordinator(db)

	authH := handlers.NewAuthHandler(db, jwtMgr, rdb)
	userH := handlers.NewUserHandler(db)
	propertyH := handlers.NewPropertyHandler(db, coord)
	chatH := handlers.NewChatHandler(db, coord)
	wsH := handlers.NewWebSocketHandler(coord)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, userH, propertyH, chatH, wsH)

	return &Server{
		cfg:    cfg,
		Router: router,
		DB:     db,
		Redis:  rdb,
		Coord:  coord,
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server run error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.Coord.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
