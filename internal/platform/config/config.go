package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultPageSize is the page size handlers fall back to when the client
// supplies none.
const DefaultPageSize = 20

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string

	LeaderboardCacheKey string
	LeaderboardCacheTTL time.Duration
	RolloverLockKey     string
	RolloverLockTTL     time.Duration
	RolloverDayKey      string

	ForumReportThreshold int

	LogDirectory string
	LogFileName  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:              getEnv("API_PORT", "8080"),
		JWTKey:               []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:               time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "user"),
		DBPassword:           getEnv("DB_PASSWORD", "password"),
		DBName:               getEnv("DB_NAME", "finkiranked_db"),
		DBSslMode:            getEnv("DB_SSLMODE", "disable"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		CORSAllowedOrigins:   strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LeaderboardCacheKey:  getEnv("LEADERBOARD_CACHE_KEY", "leaderboard:first_page"),
		LeaderboardCacheTTL:  time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 60)) * time.Second,
		RolloverLockKey:      getEnv("ROLLOVER_LOCK_KEY", "daily_rollover_lock"),
		RolloverLockTTL:      time.Duration(getEnvAsInt("ROLLOVER_LOCK_TTL_SECONDS", 300)) * time.Second,
		RolloverDayKey:       getEnv("ROLLOVER_DAY_KEY", "daily_rollover:last_day"),
		ForumReportThreshold: getEnvAsInt("FORUM_REPORT_THRESHOLD", 5),
		LogDirectory:         getEnv("LOG_DIRECTORY", ""),
		LogFileName:          getEnv("LOG_FILE_NAME", "finkiranked.log"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
