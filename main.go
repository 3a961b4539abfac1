package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/huntdb95-cloud/PERSONALAUTO/handlers"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/config"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/database"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/persistence"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/reconciler"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/statusfeed"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/vin"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/metrics"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: autosave=%s files=%s mongo=%v redis=%v rabbit=%v",
		cfg.Autosave.Backend, cfg.Files.Mode, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Rabbit.URI != "")

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			defer redisClient.Close()
			logger.Infof("Connected to Redis: %s", cfg.Redis.Addr())
		}
	}

	// Retry/backoff when connecting to MongoDB to tolerate startup races
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, database.DefaultRetry)
		if err != nil {
			logger.Warnf("%v", err)
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		}
	}

	deps := openBackends(ctx, cfg, redisClient, mongoClient)
	defer deps.close()

	decoder := vin.NewClient(cfg.VIN.BaseURL, cfg.VIN.Timeout, cfg.VIN.RPS)
	form := reconciler.NewForm(decoder)

	hub := statusfeed.NewHub()
	go hub.Run()

	opts := []persistence.Option{
		persistence.WithDebounce(cfg.Autosave.Debounce),
		persistence.WithEvents(deps.events),
	}
	if deps.downloader != nil {
		opts = append(opts, persistence.WithDownloader(deps.downloader))
	}
	coord := persistence.New(form, deps.store, deps.picker, opts...)
	form.OnChange(func(c reconciler.Change) { coord.Touch(c.Status, c.Typing) })
	coord.Subscribe(func(s persistence.Status) { hub.BroadcastJSON(s) })

	if out := coord.Restore(ctx); out.Message != "" {
		logger.Infof("%s", out.Message)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Lightweight CORS middleware so a browser host page can drive the API.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness reports which optional backends are live; the service itself
	// is always usable because every backend has a fallback
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"deps": gin.H{
				"cache":  deps.storeName,
				"files":  deps.pickerName,
				"redis":  redisClient != nil,
				"mongo":  mongoClient != nil,
				"events": deps.eventsName,
			},
			"uptime": time.Since(startTime).String(),
		})
	})

	handlers.RegisterSwagger(r)
	handlers.NewIntakeHandler(form, coord).Register(r)
	r.GET("/ws/status", statusfeed.Handler(hub))

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting quote intake service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	// a draft edited just before shutdown still reaches the cache
	if coord.Flush() {
		logger.Infof("flushed pending autosave")
	}
	hub.Stop()
	logger.Infof("stopped")
}
