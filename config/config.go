package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Firebase service account used for FCM pushes.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Search engine.
	AcceptLinkBaseURL     string        `mapstructure:"ACCEPT_LINK_BASE_URL"`
	SearchSweepCron       string        `mapstructure:"SEARCH_SWEEP_CRON"`
	SearchRestartDelay    time.Duration `mapstructure:"SEARCH_RESTART_DELAY"`
	SearchLockTTL         time.Duration `mapstructure:"SEARCH_LOCK_TTL"`
	InvitationConcurrency int64         `mapstructure:"INVITATION_CONCURRENCY"`
	InvitationRatePerSec  float64       `mapstructure:"INVITATION_RATE_PER_SEC"`
	WorkerConcurrency     int           `mapstructure:"WORKER_CONCURRENCY"`

	// Ops API.
	OpsJWTSecret       string   `mapstructure:"OPS_JWT_SECRET"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "linguahub")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 3)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "config/firebase-service-account.json")
	v.SetDefault("ACCEPT_LINK_BASE_URL", "https://app.linguahub.io")
	v.SetDefault("SEARCH_SWEEP_CRON", "@every 1m")
	v.SetDefault("SEARCH_RESTART_DELAY", 15*time.Minute)
	v.SetDefault("SEARCH_LOCK_TTL", 10*time.Minute)
	v.SetDefault("INVITATION_CONCURRENCY", 16)
	v.SetDefault("INVITATION_RATE_PER_SEC", 50.0)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("OPS_JWT_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
