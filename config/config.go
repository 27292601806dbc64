package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OrderQueueMode selects how a robot schedules orders that arrive while an
// earlier order is still executing.
type OrderQueueMode string

const (
	// OrderQueueConcurrent runs every accepted order in its own task. Two
	// in-flight orders mutate the same pose; the last writer wins.
	OrderQueueConcurrent OrderQueueMode = "concurrent"

	// OrderQueueSerialize funnels orders through a per-robot queue so they
	// execute back-to-back in acceptance order.
	OrderQueueSerialize OrderQueueMode = "serialize"
)

type Config struct {
	// MQTT
	MQTTBrokerHost string
	MQTTBrokerPort string

	// Fleet
	RobotCount        int
	HeartbeatInterval time.Duration
	StepDelay         time.Duration
	NodeDelay         time.Duration
	OrderQueueMode    OrderQueueMode

	// HTTP API
	APIPort string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Application
	LogLevel string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	queueMode := OrderQueueMode(getEnv("ORDER_QUEUE_MODE", string(OrderQueueConcurrent)))
	if queueMode != OrderQueueConcurrent && queueMode != OrderQueueSerialize {
		log.Printf("Warning: unknown ORDER_QUEUE_MODE %q, falling back to %q", queueMode, OrderQueueConcurrent)
		queueMode = OrderQueueConcurrent
	}

	return &Config{
		MQTTBrokerHost: getEnv("MQTT_BROKER_HOST", "localhost"),
		MQTTBrokerPort: getEnv("MQTT_BROKER_PORT", "1883"),

		RobotCount:        getEnvInt("ROBOT_COUNT", 3),
		HeartbeatInterval: time.Duration(getEnvInt("HEARTBEAT_SECONDS", 5)) * time.Second,
		StepDelay:         time.Duration(getEnvInt("STEP_DELAY_MS", 500)) * time.Millisecond,
		NodeDelay:         time.Duration(getEnvInt("NODE_DELAY_MS", 2000)) * time.Millisecond,
		OrderQueueMode:    queueMode,

		APIPort: getEnv("API_PORT", "8080"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Warning: invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
