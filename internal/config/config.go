package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	// Retention for settled friend requests swept by the maintenance job.
	RequestPurgeAge time.Duration

	// Poll-mode client cadences.
	PollMessagesInterval time.Duration
	PollFriendsInterval  time.Duration
}

// LoadConfig reads .env if present and falls back to the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:               getEnv("DB_NAME", "messenger_hub"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
		RequestPurgeAge:      getDuration("REQUEST_PURGE_AGE", 30*24*time.Hour),
		PollMessagesInterval: getDuration("POLL_MESSAGES_INTERVAL", 2*time.Second),
		PollFriendsInterval:  getDuration("POLL_FRIENDS_INTERVAL", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using default", value)
		return fallback
	}
	return d
}
