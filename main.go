package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/street-mapper/app/config"
	"github.com/street-mapper/app/controllers"
	"github.com/street-mapper/app/services"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/matcher"
	"github.com/street-mapper/internal/overpass"
	"github.com/street-mapper/internal/reference"
	"github.com/street-mapper/routes"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// 2. Khởi tạo logger
	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting Street Mapper Service",
		zap.String("env", cfg.App.Env),
		zap.String("boundary_source", cfg.Boundary.Source))

	// 3. Load ranh giới hành chính
	index := loadBoundaries(cfg, logger)
	logger.Info("Boundary index ready",
		zap.Int("sub_districts", len(index.ListUnits(boundary.LevelSubDistrict))),
		zap.Int("violations", len(index.Violations())))

	// 4. Cache response Overpass (tắt mặc định)
	var responseCache overpass.ResponseCache
	var cacheService services.ICacheService
	if cfg.Cache.Enabled {
		hybrid := initCache(cfg, logger)
		defer hybrid.Close()
		responseCache = hybrid
		cacheService = hybrid
	}

	// 5. Khởi tạo components
	fetcher := overpass.NewClient(cfg.ClientConfig(), index, responseCache, logger)
	policy, _ := mapper.ParseDuplicatePolicy(cfg.Mapper.DuplicatePolicy)
	streetMapper := mapper.NewMapper(fetcher, index, policy, logger)
	validator := reference.NewValidator(cfg.ValidatorConfig(), matcher.NewMatcher(cfg.MatcherConfig()), logger)

	// 6. Khởi tạo services và controllers
	streetService := services.NewStreetService(index, streetMapper, validator, logger)
	streetController := controllers.NewStreetController(streetService, logger)
	adminController := controllers.NewAdminController(cacheService, logger)

	// 7. Khởi tạo Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, streetController, adminController)

	// 8. Khởi động server
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger khởi tạo structured logger
func initLogger(cfg *config.Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// loadBoundaries load index từ file GeoJSON hoặc MongoDB; lỗi thì dừng service
func loadBoundaries(cfg *config.Config, logger *zap.Logger) *boundary.Index {
	opts, err := cfg.Boundary.Options()
	if err != nil {
		logger.Fatal("Invalid boundary options", zap.Error(err))
	}

	if cfg.Boundary.Source == config.BoundarySourceMongo {
		client := initMongoDB(cfg, logger)
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()

		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		index, err := boundary.LoadFromMongo(ctx, coll, opts, logger)
		if err != nil {
			logger.Fatal("Failed to load boundaries from MongoDB", zap.Error(err))
		}
		return index
	}

	index, err := boundary.Load(cfg.Boundary.Path, opts, logger)
	if err != nil {
		logger.Fatal("Failed to load boundaries", zap.String("path", cfg.Boundary.Path), zap.Error(err))
	}
	return index
}

// initMongoDB khởi tạo kết nối MongoDB
func initMongoDB(cfg *config.Config, logger *zap.Logger) *mongo.Client {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.Mongo.URL))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection))
	return client
}

// initCache L1 bộ nhớ, thêm L2 Redis khi có redis.url.
// Redis không kết nối được thì chạy với L1.
func initCache(cfg *config.Config, logger *zap.Logger) *services.HybridCacheService {
	l1 := services.NewMemoryCacheService(cfg.Cache.L1Size, cfg.Cache.TTL, logger)

	var l2 services.ICacheService
	if cfg.Redis.URL != "" {
		redisCache, err := services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache only", zap.Error(err))
		} else {
			l2 = redisCache
		}
	}

	logger.Info("Provider response cache enabled",
		zap.Int("l1_size", cfg.Cache.L1Size),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Bool("redis", l2 != nil))
	return services.NewHybridCacheService(l1, l2, logger)
}
