package main

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/layer-3/whisperbox/adapters/directory"
	"github.com/layer-3/whisperbox/adapters/events"
	"github.com/layer-3/whisperbox/adapters/store"
	"github.com/layer-3/whisperbox/adapters/tokenizer"
	"github.com/layer-3/whisperbox/adapters/verifier"
	"github.com/layer-3/whisperbox/config"
	"github.com/layer-3/whisperbox/ports"
	"github.com/layer-3/whisperbox/service"
	transport "github.com/layer-3/whisperbox/transport/http"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Profile directory: on-chain registry, or in-memory for development.
	var dir ports.Directory
	if cfg.RPCURL == "memory" {
		log.Warn("using in-memory profile directory; no profiles are registered")
		dir = directory.NewMemory()
	} else {
		chain, err := directory.NewChain(cfg.RPCURL, cfg.ProgramID)
		if err != nil {
			log.Fatalf("Failed to configure chain directory: %v", err)
		}
		dir = chain
	}

	// Stores and event publisher: Redis when configured, otherwise local.
	var (
		messages   ports.MessageStore
		challenges ports.ChallengeStore
		publisher  message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		redisStore := store.NewRedis(redisClient)
		messages = redisStore
		challenges = redisStore

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		memStore := store.NewMemory()
		messages = memStore
		challenges = memStore
		publisher = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Tokens from this process die with it; fine for a single node.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate token secret: %v", err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn("JWT_SECRET not set, using an ephemeral secret")
	}

	authService := service.NewAuthService(dir, challenges, verifier.NewEd25519(), log)
	if cfg.ChallengeTTL > 0 {
		authService.SetChallengeTTL(cfg.ChallengeTTL)
	}
	mailboxService := service.NewMailboxService(dir, messages, events.NewWatermillPublisher(publisher), log)

	handlers := transport.NewHandlers(authService, mailboxService, dir, tokenizer.NewJWTTokenizer([]byte(secret)), log)
	router := transport.SetupRouter(handlers)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
