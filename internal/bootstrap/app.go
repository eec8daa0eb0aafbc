package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brainbattle-platform/brainbattle-clan/internal/coreclient"
	"github.com/brainbattle-platform/brainbattle-clan/internal/events"
	httpHandler "github.com/brainbattle-platform/brainbattle-clan/internal/handler/http"
	wsHandler "github.com/brainbattle-platform/brainbattle-clan/internal/handler/websocket"
	"github.com/brainbattle-platform/brainbattle-clan/internal/hub"
	gormpersistence "github.com/brainbattle-platform/brainbattle-clan/internal/infra/persistence/gorm"
	"github.com/brainbattle-platform/brainbattle-clan/internal/infra/setup"
	redisstate "github.com/brainbattle-platform/brainbattle-clan/internal/infra/state/redis"
	"github.com/brainbattle-platform/brainbattle-clan/internal/middleware"
	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
	"github.com/brainbattle-platform/brainbattle-clan/internal/tasks"
	"github.com/brainbattle-platform/brainbattle-clan/internal/worker"
)

// Config holds everything loaded from the environment.
type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	EventChannel string

	JWTSecret  string
	ServerPort string
	LogLevel   string
	AppEnv     string

	CoreBaseURL string
	CoreTimeout time.Duration

	// Per-(sender, conversation) message budget.
	MessageRateMax    int
	MessageRateWindow time.Duration

	// Per-IP HTTP budget.
	HTTPRateMax    int
	HTTPRateWindow time.Duration

	PresenceTTL           time.Duration
	NotificationRetention time.Duration

	CORSAllowedOrigin string
}

// LoadConfig reads configuration from the environment, with a .env file as
// an optional local override source.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // env vars alone are fine

	cfg := &Config{
		DBUser:        os.Getenv("MYSQL_USER"),
		DBPassword:    os.Getenv("MYSQL_PASSWORD"),
		DBHost:        os.Getenv("MYSQL_HOST"),
		DBPort:        os.Getenv("MYSQL_PORT"),
		DBName:        os.Getenv("MYSQL_DB"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:     os.Getenv("REDIS_KEY_PREFIX"),
		EventChannel:  os.Getenv("EVENT_CHANNEL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		CoreBaseURL:   os.Getenv("CORE_BASE_URL"),
		// defaults
		CoreTimeout:           3 * time.Second,
		MessageRateMax:        20,
		MessageRateWindow:     5 * time.Second,
		HTTPRateMax:           100,
		HTTPRateWindow:        1 * time.Second,
		PresenceTTL:           120 * time.Second,
		NotificationRetention: 30 * 24 * time.Hour,
		CORSAllowedOrigin:     os.Getenv("CORS_ALLOWED_ORIGIN"),
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB")) // empty means 0

	if raw := os.Getenv("CORE_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.CoreTimeout = time.Duration(secs) * time.Second
		}
	}
	if raw := os.Getenv("RATE_LIMIT_MAX"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MessageRateMax = n
		}
	}
	if raw := os.Getenv("RATE_LIMIT_WINDOW_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.MessageRateWindow = time.Duration(secs) * time.Second
		}
	}
	if raw := os.Getenv("PRESENCE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.PresenceTTL = time.Duration(secs) * time.Second
		}
	}
	if raw := os.Getenv("NOTIFICATION_RETENTION_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			cfg.NotificationRetention = time.Duration(days) * 24 * time.Hour
		}
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cc:"
	}
	if cfg.EventChannel == "" {
		cfg.EventChannel = "bb.events"
	}
	for _, v := range []struct{ name, value string }{
		{"MYSQL_USER", cfg.DBUser},
		{"MYSQL_PASSWORD", cfg.DBPassword},
		{"MYSQL_HOST", cfg.DBHost},
		{"MYSQL_PORT", cfg.DBPort},
		{"MYSQL_DB", cfg.DBName},
	} {
		if v.value == "" {
			return nil, fmt.Errorf("environment variable %s must be set", v.name)
		}
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	if cfg.CoreBaseURL == "" {
		return nil, fmt.Errorf("environment variable CORE_BASE_URL must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App holds every component of the process for startup and shutdown.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Hub         *hub.Hub
	Broadcaster *hub.RedisBroadcaster
	Consumer    *events.Consumer
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
}

// NewApp creates and wires every component.
func NewApp() (*App, error) {
	// 1. Configuration
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. Logger
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // validated in LoadConfig
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetLevel(logLevel)
	log.Infof("Logger initialized (Level: %s)", logLevel.String())
	log.Info("Configuration loaded successfully")

	// 3. Infrastructure
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	// 4. Repositories
	log.Info("Initializing repositories...")
	convRepo := gormpersistence.NewGormConversationRepository(db)
	msgRepo := gormpersistence.NewGormMessageRepository(db)
	receiptRepo := gormpersistence.NewGormReceiptRepository(db)
	notifRepo := gormpersistence.NewGormNotificationRepository(db)
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)
	log.Info("Repositories initialized")

	// 5. Bus, hub and cluster broadcaster
	bus := events.NewRedisBus(redisClient)
	hubInstance := hub.NewHub()
	broadcaster := hub.NewRedisBroadcaster(bus, hubInstance, cfg.KeyPrefix)

	// 6. Services
	log.Info("Initializing services...")
	conversationService := service.NewConversationService(convRepo)
	messageService := service.NewMessageService(convRepo, msgRepo, receiptRepo, stateRepo, broadcaster, cfg.MessageRateMax, cfg.MessageRateWindow)
	notificationService := service.NewNotificationService(notifRepo, stateRepo, broadcaster)
	coreClient := coreclient.New(cfg.CoreBaseURL, cfg.CoreTimeout)
	log.Info("Services initialized")

	// 7. Gateway and event consumer
	gateway := hub.NewGateway(hubInstance, broadcaster, conversationService, messageService, stateRepo, cfg.PresenceTTL)

	consumer := events.NewConsumer(bus, cfg.EventChannel)
	reactor := events.NewCoreEventReactor(conversationService, notificationService, coreClient, coreClient, broadcaster, stateRepo)
	reactor.Register(consumer)
	log.Info("Event consumer wired")

	// 8. Handlers
	log.Info("Initializing handlers...")
	conversationHandler := httpHandler.NewConversationHandler(conversationService, messageService)
	notificationHandler := httpHandler.NewNotificationHandler(notificationService)
	presenceHandler := httpHandler.NewPresenceHandler(stateRepo)
	internalHandler := httpHandler.NewInternalHandler(conversationService)
	websocketHandler := wsHandler.NewWebSocketHandler(gateway, cfg.CORSAllowedOrigin)
	log.Info("Handlers initialized")

	// 9. Worker server
	workerServer := worker.NewWorkerServer(redisClientOpt, notificationService, log)
	log.Info("Worker server initialized")

	// 10. Router
	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))

	router.Use(func(c *gin.Context) {
		allowedOrigin := cfg.CORSAllowedOrigin
		if allowedOrigin == "" {
			allowedOrigin = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	router.Use(middleware.RateLimit(stateRepo, cfg.HTTPRateMax, cfg.HTTPRateWindow))

	api := router.Group("/api").Use(middleware.Auth(cfg.JWTSecret))
	{
		api.GET("/conversations", conversationHandler.ListMine)
		api.GET("/conversations/:id/messages", conversationHandler.History)
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
		api.GET("/presence/:userId", presenceHandler.Check)
	}
	router.GET("/ws", middleware.Auth(cfg.JWTSecret), websocketHandler.HandleConnection)

	// Trusted service-to-service surface; protected by network policy, not
	// user tokens.
	internalRoutes := router.Group("/internal")
	{
		internalRoutes.POST("/conversations/dm", internalHandler.EnsureDM)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	// 11. HTTP server
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	app := &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		Hub:            hubInstance,
		Broadcaster:    broadcaster,
		Consumer:       consumer,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}
	log.Info("Application assembled successfully")
	return app, nil
}

// Start launches the background routines and the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")

	if err := a.Broadcaster.Start(context.Background()); err != nil {
		a.Log.Fatalf("Failed to start room broadcaster: %v", err)
	}
	a.Log.Info("Room broadcaster started")

	if err := a.Consumer.Start(context.Background()); err != nil {
		a.Log.Fatalf("Failed to start event consumer: %v", err)
	}
	a.Log.Info("Event consumer started")

	go a.AsynqServer.Start()
	a.Log.Info("Asynq worker server routine started")

	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	taskPayload, err := tasks.NewNotificationSweepTask(a.Config.NotificationRetention)
	if err != nil {
		a.Log.Errorf("Failed to create notification sweep task payload: %v", err)
		return
	}
	task := asynq.NewTask(tasks.TypeNotificationSweep, taskPayload)

	schedule := "@every 1h"
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("low"))
	if err != nil {
		a.Log.Errorf("Could not register notification sweep task: %v", err)
	} else {
		a.Log.Infof("Notification sweep task registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := scheduler.Run(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
				a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
			} else {
				a.Log.Info("Asynq scheduler stopped.")
			}
		}
	}()
}

// Shutdown stops the components in dependency order.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.Consumer != nil {
		a.Consumer.Stop()
	}
	if a.Broadcaster != nil {
		if err := a.Broadcaster.Close(); err != nil {
			a.Log.Errorf("Error closing room broadcaster: %v", err)
		}
	}

	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		} else {
			a.Log.Info("Asynq client closed.")
		}
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		} else {
			a.Log.Info("Redis connection closed.")
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware logs one line per request with latency and status.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		if errorMessage != "" {
			entry.Error(errorMessage)
		} else if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request handled")
		}
	}
}
