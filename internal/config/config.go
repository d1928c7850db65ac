package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort string

	JWTSecret string

	// Worker settings for the change-notifier fan-out
	WorkerCount int

	// TTL in seconds for cached engagement summaries
	SummaryCacheTTL int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	workerCount, err := strconv.Atoi(os.Getenv("NOTIFIER_WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 2
	}

	summaryTTL, err := strconv.Atoi(os.Getenv("SUMMARY_CACHE_TTL"))
	if err != nil || summaryTTL <= 0 {
		summaryTTL = 60
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		RedisURL: redisURL,

		ServerPort: serverPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		WorkerCount: workerCount,

		SummaryCacheTTL: summaryTTL,
	}, nil
}
