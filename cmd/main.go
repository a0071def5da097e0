package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/sorokindm/parley/internal/broker"
	"github.com/sorokindm/parley/internal/cache"
	"github.com/sorokindm/parley/internal/config"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/handler"
	"github.com/sorokindm/parley/internal/middleware"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/internal/service"
	"github.com/sorokindm/parley/pkg/database"
	"github.com/sorokindm/parley/pkg/jwt"
	pkglog "github.com/sorokindm/parley/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		AppName: cfg.Log.AppName,
	})
	logger := pkglog.L()

	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.ChatModel{},
		&domain.ChatMemberModel{},
		&domain.MessageModel{},
		&domain.FriendRequestModel{},
		&domain.ChannelSubscriptionModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	chatRepo := repository.NewGormChatRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	friendRepo := repository.NewGormFriendRequestRepository(db)
	subscriptionRepo := repository.NewGormChannelSubscriptionRepository(db)

	// Initialize Redis presence store
	presence, err := cache.NewRedisPresenceStore(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer presence.Close()
	logger.Info().Msg("redis presence store connected")

	// Initialize JWT manager
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)

	// Initialize message broker
	b := broker.New(cfg.Broker)

	// Initialize services
	userService := service.NewUserService(userRepo, tokens, presence, cfg.Presence.TTL)
	chatService := service.NewChatService(chatRepo, userRepo, friendRepo)
	messageService := service.NewMessageService(messageRepo, chatRepo, b)
	friendService := service.NewFriendService(friendRepo, userRepo, chatRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, chatRepo)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, authMiddleware)
	chatHandler := handler.NewChatHandler(chatService, authMiddleware)
	messageHandler := handler.NewMessageHandler(messageService, authMiddleware)
	friendHandler := handler.NewFriendHandler(friendService, authMiddleware)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, authMiddleware)
	wsHandler := handler.NewWSHandler(b, chatRepo, userRepo, tokens, presence, cfg.WebSocket, cfg.Presence)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(*logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register routes
	api := r.Group("/api/v1")
	userHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(api)
	messageHandler.RegisterRoutes(api)
	friendHandler.RegisterRoutes(api)
	subscriptionHandler.RegisterRoutes(api)
	wsHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("parley starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
