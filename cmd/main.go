package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fathima-sithara/chat-backend/internal/api"
	"github.com/fathima-sithara/chat-backend/internal/cache"
	cfgpkg "github.com/fathima-sithara/chat-backend/internal/config"
	"github.com/fathima-sithara/chat-backend/internal/events"
	"github.com/fathima-sithara/chat-backend/internal/handlers"
	"github.com/fathima-sithara/chat-backend/internal/logger"
	"github.com/fathima-sithara/chat-backend/internal/repository"
	"github.com/fathima-sithara/chat-backend/internal/service"
	"github.com/fathima-sithara/chat-backend/internal/storage"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := cfgpkg.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	// Mongo client
	mc, err := repository.NewMongoClient(ctx, cfg)
	if err != nil {
		zlog.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	// Redis profile cache
	rdb, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		zlog.Fatalw("redis init", "err", err)
	}
	defer rdb.Close()

	// S3 image store
	imageStore, err := storage.NewImageStore(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint)
	if err != nil {
		zlog.Fatalw("s3 init", "err", err)
	}

	// Kafka event producer
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
	defer producer.Close()

	// Stores
	messageStore, err := repository.NewMessageStore(db)
	if err != nil {
		zlog.Fatalw("message store init", "err", err)
	}
	conversationStore, err := repository.NewConversationStore(db)
	if err != nil {
		zlog.Fatalw("conversation store init", "err", err)
	}
	profileStore := repository.NewProfileStore(db)

	// Services
	profileSvc := service.NewProfileService(profileStore, rdb)
	imageSvc := service.NewImageService(imageStore)
	conversationSvc := service.NewConversationService(messageStore, conversationStore, profileSvc, producer, zlog)

	// HTTP server
	app := api.NewServer(
		handlers.NewConversationHandler(conversationSvc, zlog),
		handlers.NewProfileHandler(profileSvc, zlog),
		handlers.NewImageHandler(imageSvc, zlog),
	)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("chat-backend started", "port", cfg.App.Port)

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	zlog.Infow("chat-backend stopped")
}
