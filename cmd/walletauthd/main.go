package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Iagonorg/login-with-cardano-demo/adapters/events"
	"github.com/Iagonorg/login-with-cardano-demo/adapters/store"
	"github.com/Iagonorg/login-with-cardano-demo/adapters/tokenizer"
	"github.com/Iagonorg/login-with-cardano-demo/config"
	"github.com/Iagonorg/login-with-cardano-demo/service"
	"github.com/Iagonorg/login-with-cardano-demo/transport/http"
	"github.com/Iagonorg/login-with-cardano-demo/verifier"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Generate a new ECDSA key pair (you would normally load this from somewhere secure)
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Fatal("Failed to generate signing key", zap.Error(err))
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)

	// Initialize Watermill Redis publisher
	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logger.Fatal("Failed to create Redis publisher", zap.Error(err))
	}

	redisStore := store.NewRedisStore(redisClient)

	authService := service.NewAuthService(
		redisStore,
		redisStore,
		redisStore,
		verifier.New(cfg.CardanoNetwork),
		tokenizer.NewJWTTokenizer(privateKey),
		events.NewWatermillPublisher(publisher),
		logger,
	)

	router := http.SetupRouter(authService)

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
