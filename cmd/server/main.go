package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogfinder/internal/cache"
	"catalogfinder/internal/config"
	"catalogfinder/internal/repository"
	"catalogfinder/internal/service"
	"catalogfinder/internal/transport/rest"
	"catalogfinder/internal/transport/ws"
	"catalogfinder/internal/tree"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	log.Printf("Build defaults: maxDepth=%d minLeafSize=%d", cfg.MaxTreeDepth, cfg.MinLeafSize)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepo(db)
	treeRepo := repository.NewTreeRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	treeCache := cache.NewTreeCache(rdb)
	funnelCache := cache.NewFunnelCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	buildDefaults := tree.Options{MaxDepth: cfg.MaxTreeDepth, MinLeafSize: cfg.MinLeafSize}
	catalogSvc := service.NewCatalogService(catalogRepo, treeRepo, treeCache, buildDefaults)
	questionSvc := service.NewQuestionService()
	sessionSvc := service.NewSessionService(sessionRepo, treeRepo, sessionCache, treeCache, funnelCache, questionSvc)
	analyticsSvc := service.NewAnalyticsService(sessionRepo, treeRepo, funnelCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		CatalogService:   catalogSvc,
		SessionService:   sessionSvc,
		AnalyticsService: analyticsSvc,
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/catalogs")
		log.Println("  POST /v1/catalogs/{catalogId}/rebuild")
		log.Println("  GET  /v1/catalogs/{catalogId}/tree")
		log.Println("  GET  /v1/catalogs/{catalogId}/analytics")
		log.Println("  POST /v1/catalogs/{catalogId}/sessions")
		log.Println("  POST /v1/sessions/{sessionId}/answers")
		log.Println("  GET  /v1/sessions/{sessionId}/resume")
		log.Println("  GET  /v1/sessions/{sessionId}/replay")
		log.Println("  WS   /v1/ws/catalogs/{catalogId}/merchant")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
