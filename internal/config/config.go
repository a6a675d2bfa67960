package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses token and session lifetimes

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values. It is constructed once at
// startup and passed into constructors; core logic never reads ambient
// environment state. Access and refresh tokens are signed with separate
// secrets so a leaked access token cannot be replayed at the refresh
// endpoint.
type Config struct {
	Env  string // application environment (dev/test/prod)
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessSecret  string        // secret used to sign access tokens
	RefreshSecret string        // secret used to sign refresh tokens
	AccessTTL     time.Duration // access token time-to-live
	RefreshTTL    time.Duration // refresh token and session time-to-live
	SessionStale  time.Duration // age after which a refresh rolls the session forward
	ResetTTL      time.Duration // password reset ticket time-to-live
	BcryptCost    int           // bcrypt cost for password hashing

	AMQPURL string // RabbitMQ URL for security event publishing (empty disables)
}

// Load reads configuration from the environment (and a .env file when one
// exists) and returns a Config. Required variables are enforced by must();
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	// Missing .env is fine in containerized deployments where the
	// environment is injected directly.
	_ = godotenv.Load()

	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		AccessSecret:  must("ACCESS_JWT_SECRET"),
		RefreshSecret: must("REFRESH_JWT_SECRET"),
		AccessTTL:     envDur("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    envDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SessionStale:  envDur("SESSION_STALE_AFTER", 2*24*time.Hour),
		ResetTTL:      envDur("RESET_TOKEN_TTL", time.Hour),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AMQPURL:       os.Getenv("RABBITMQ_URL"),
	}
}

// IsProd reports whether the service runs in production mode. Cookie
// policies and error detail suppression key off this.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
