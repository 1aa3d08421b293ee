package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN enables the postgres stores when set; empty means
	// in-memory stores (development and tests).
	PostgresDSN string

	// RedisURL enables redis-backed commitment bookkeeping when set.
	RedisURL string

	// KafkaBrokers enables the kafka event publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Juror panel bounds for case creation.
	MinRequiredJurors int
	MaxRequiredJurors int

	// Reputation adjustment per alignment disclosure, and score bounds.
	ReputationDelta   int
	ReputationFloor   int
	ReputationCeiling int
	ReputationDefault int

	// PaillierBits sizes the tally keypair.
	PaillierBits int

	// SweepInterval is how often the deadline sweeper polls for open cases
	// past their voting deadline.
	SweepInterval time.Duration

	// DefaultVotingWindow is applied when a case is created without an
	// explicit deadline.
	DefaultVotingWindow time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("VERDICT_ADDR", ":8080"),
		JWTSigningKey:       envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:         os.Getenv("VERDICT_POSTGRES_DSN"),
		RedisURL:            os.Getenv("VERDICT_REDIS_URL"),
		KafkaTopic:          envOr("VERDICT_KAFKA_TOPIC", "verdict.events"),
		MinRequiredJurors:   envInt("VERDICT_MIN_JURORS", 3),
		MaxRequiredJurors:   envInt("VERDICT_MAX_JURORS", 12),
		ReputationDelta:     envInt("VERDICT_REPUTATION_DELTA", 5),
		ReputationFloor:     envInt("VERDICT_REPUTATION_FLOOR", 0),
		ReputationCeiling:   envInt("VERDICT_REPUTATION_CEILING", 200),
		ReputationDefault:   envInt("VERDICT_REPUTATION_DEFAULT", 100),
		PaillierBits:        envInt("VERDICT_PAILLIER_BITS", 2048),
		SweepInterval:       envDuration("VERDICT_SWEEP_INTERVAL", 30*time.Second),
		DefaultVotingWindow: envDuration("VERDICT_VOTING_WINDOW", 72*time.Hour),
	}
	if brokers := os.Getenv("VERDICT_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
