// Package config builds server configuration from flags, environment and dotenv files.
package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server settings.
type Config struct {
	Addr          string
	DatabaseURL   string
	SessionKey    string
	SessionIssuer string
	SignInURL     string
	SignUpURL     string
	RedisAddr     string
	CacheTTL      time.Duration
	APIRate       float64
	APIBurst      int
	Env           string
}

// Development reports whether the server runs in development mode.
func (c Config) Development() bool { return c.Env == "development" }

var (
	errNoDatabaseURL = errors.New("config: DATABASE_URL (-dsn) is required")
	errNoSessionKey  = errors.New("config: SESSION_SIGNING_KEY (-session-key) is required")
)

// usageOutput receives flag usage when -h or -help is given.
var usageOutput io.Writer = os.Stderr

// LoadEnvFiles loads .env.local then .env into the process environment. Variables already
// set win; missing files are skipped.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load parses args (without the program name) over env-derived defaults.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("flashcards", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "addr", getEnv("ADDR", ":8080"), "listen address")
	fs.StringVar(&cfg.DatabaseURL, "dsn", getEnv("DATABASE_URL", ""), "PostgreSQL DSN")
	fs.StringVar(&cfg.SessionKey, "session-key", getEnv("SESSION_SIGNING_KEY", ""), "identity provider HS256 key")
	fs.StringVar(&cfg.SessionIssuer, "session-issuer", getEnv("SESSION_ISSUER", ""), "expected token issuer (optional)")
	fs.StringVar(&cfg.SignInURL, "sign-in-url", getEnv("SIGN_IN_URL", "/sign-in"), "identity provider sign-in page")
	fs.StringVar(&cfg.SignUpURL, "sign-up-url", getEnv("SIGN_UP_URL", "/sign-up"), "identity provider sign-up page")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", ""), "redis address for the page cache (memory when empty)")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", getDuration("PAGE_CACHE_TTL", 5*time.Minute), "rendered page TTL")
	fs.Float64Var(&cfg.APIRate, "rate", 5, "API requests per second per user")
	fs.IntVar(&cfg.APIBurst, "burst", 10, "API burst per user")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "production"), "environment name")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(usageOutput)
			fs.Usage()
		}
		return Config{}, err
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errNoDatabaseURL
	}
	if cfg.SessionKey == "" {
		return Config{}, errNoSessionKey
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
