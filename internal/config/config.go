package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	HTTPPort     string
	MaxTreeDepth int
	MinLeafSize  int
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "catalogfinder"),
		RedisAddr:    getEnv("REDIS_URI", "localhost:6379"),
		HTTPPort:     getEnv("PORT", "8080"),
		MaxTreeDepth: getEnvInt("MAX_TREE_DEPTH", 10),
		MinLeafSize:  getEnvInt("MIN_LEAF_SIZE", 3),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
