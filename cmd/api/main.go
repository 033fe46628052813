package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/config"
	"github.com/slate-hq/slate-api/internal/database"
	"github.com/slate-hq/slate-api/internal/handler"
	"github.com/slate-hq/slate-api/internal/middleware"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/observability"
	"github.com/slate-hq/slate-api/internal/realtime"
	"github.com/slate-hq/slate-api/internal/repository"
	"github.com/slate-hq/slate-api/internal/router"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/pkg/attachments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Channel{},
		&models.Conversation{},
		&models.Message{},
		&models.Reaction{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional: without them the API runs single-node
	// with no workspace name cache.
	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	natsConn := connectNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	// Without cloudinary credentials the upload routes are simply not
	// registered; the rest of the API is unaffected.
	var uploadHandler *handler.UploadHandler
	uploader, err := attachments.New(attachments.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("attachment storage not configured, uploads disabled")
	} else {
		uploadService := service.NewUploadService(uploader, cfg.UploadMaxSizeMB, logger)
		uploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	hub := realtime.NewHub(redisClient, cfg.EventChannelBase, natsConn, logger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub.Start(hubCtx)

	workspaceRepo := repository.NewWorkspaceRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	workspaceService := service.NewWorkspaceService(workspaceRepo, memberRepo, redisClient, cfg.WorkspaceCacheTTL, hub, logger)
	channelService := service.NewChannelService(channelRepo, memberRepo, hub, logger)
	memberService := service.NewMemberService(memberRepo, userRepo, hub, logger)
	conversationService := service.NewConversationService(conversationRepo, memberRepo, logger)
	messageService := service.NewMessageService(messageRepo, reactionRepo, channelRepo, conversationRepo, memberRepo, userRepo, hub, logger)
	reactionService := service.NewReactionService(reactionRepo, messageRepo, memberRepo, hub, logger)
	userService := service.NewUserService(userRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		WorkspaceHandler:    handler.NewWorkspaceHandler(workspaceService, logger),
		ChannelHandler:      handler.NewChannelHandler(channelService, logger),
		MemberHandler:       handler.NewMemberHandler(memberService, logger),
		ConversationHandler: handler.NewConversationHandler(conversationService, logger),
		MessageHandler:      handler.NewMessageHandler(messageService, logger),
		ReactionHandler:     handler.NewReactionHandler(reactionService, logger),
		UploadHandler:       uploadHandler,
		UserHandler:         handler.NewUserHandler(userService, logger),
		RealtimeHandler:     handler.NewRealtimeHandler(hub, memberService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis url not configured, caching and cross-node events disabled")
		return nil
	}
	client, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	return client
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		logger.Warn().Msg("nats url not configured, nats event bridge disabled")
		return nil
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	return conn
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
