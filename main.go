package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hoarding-server/config"
	"hoarding-server/handlers"
	"hoarding-server/logger"
	"hoarding-server/middleware"
	"hoarding-server/services"
	"hoarding-server/store"
	"hoarding-server/telemetry"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.IsProduction())
	defer logger.Sync()
	log := logger.Named("main")

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, "hoarding-server", cfg.OTelEndpoint, logger.Named("telemetry"))
	if err != nil {
		log.Warnw("failed to initialize tracer", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cancel()
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		cancel()
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	cancel()
	log.Infow("connected to MongoDB", "database", cfg.MongoDatabase)
	db := mongoClient.Database(cfg.MongoDatabase)

	hoardingStore := store.NewMongoHoardingStore(db)
	userStore := store.NewMongoUserStore(db)
	if err := hoardingStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	// Redis caches user lookups; the server keeps working without it.
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("Redis unavailable, user cache disabled", "addr", cfg.RedisAddr, "error", err)
		redisClient.Close()
		redisClient = nil
	}

	userService := services.NewUserService(userStore, redisClient, cfg.JWTSecret, cfg.TokenTTL(), cfg.UserCacheTTL, logger.Named("users"))
	hoardingService := services.NewHoardingService(hoardingStore, userService, logger.Named("hoardings"))

	router := handlers.NewRouter(
		handlers.NewAuthHandler(userService),
		handlers.NewHoardingHandler(hoardingService),
		userService,
	)

	var handler http.Handler = router
	handler = middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(handler)
	handler = middleware.ErrorMiddleware(logger.Named("recover"))(handler)
	handler = middleware.LoggingMiddleware(logger.Named("http"))(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", srv.Addr, "env", cfg.ServerEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Errorw("tracer shutdown failed", "error", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Errorw("MongoDB disconnect failed", "error", err)
	}
}
