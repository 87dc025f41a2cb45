package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	JWTSecret  string

	// SnapGridMins is the timeline snapping grid for time blocks.
	SnapGridMins int
	// RolloverTick is how often the scheduler checks for timezone midnights.
	RolloverTick time.Duration
	// RolloverWorkers bounds per-user parallelism inside one rollover run.
	RolloverWorkers int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "dayplan_user"),
		DBPassword:      getEnv("DB_PASSWORD", "dayplan_pass"),
		DBName:          getEnv("DB_NAME", "dayplan_db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretkey"),
		SnapGridMins:    getEnvInt("SNAP_GRID_MINS", 15),
		RolloverTick:    getEnvDuration("ROLLOVER_TICK", 5*time.Minute),
		RolloverWorkers: getEnvInt("ROLLOVER_WORKERS", 4),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, value, defaultVal)
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, value, defaultVal)
	}
	return defaultVal
}
