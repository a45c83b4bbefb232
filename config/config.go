package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults match the public devnet deployment of the registry program.
const (
	DefaultPort      = "9000"
	DefaultRPCURL    = "https://api.devnet.solana.com"
	DefaultProgramID = "D4vno1rrteswpFM3SSfzvJwyPzSkQKCiN6WfEuK7qGyS"
)

// Config carries process configuration, read from the environment after an
// optional .env file is loaded.
type Config struct {
	Port         string
	RedisURL     string        // empty selects the in-memory stores
	RPCURL       string        // "memory" selects the in-memory directory
	ProgramID    string        // base58 registry program id
	JWTSecret    string        // HMAC secret for inbox access tokens
	ChallengeTTL time.Duration // zero keeps the service default
}

// Load reads configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", DefaultPort),
		RedisURL:  os.Getenv("REDIS_URL"),
		RPCURL:    getEnv("RPC_URL", DefaultRPCURL),
		ProgramID: getEnv("PROGRAM_ID", DefaultProgramID),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if raw := os.Getenv("CHALLENGE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.ChallengeTTL = ttl
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
