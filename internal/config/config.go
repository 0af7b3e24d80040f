package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultReadwiseURL = "https://readwise.io/api/v3/list/"
	DefaultPinboardURL = "https://api.pinboard.in/v1/posts/add"
)

type Config struct {
	// Credentials
	ReadwiseToken string // Readwise Reader API key
	PinboardToken string // Pinboard API token ("user:HEX")

	// Endpoints (overridable, mostly for tests and proxies)
	ReadwiseURL string
	PinboardURL string

	// Pipeline behavior
	StateFile string        // path of the last-run watermark file
	SourceTag string        // tag prepended to every submitted bookmark
	Location  string        // optional Reader location filter (ex: "archive")
	DryRun    bool          // print submissions instead of calling Pinboard
	FetchAll  bool          // discard the stored watermark, fetch full history
	RateDelay time.Duration // unconditional pause after each Pinboard call

	// Logging
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	HTTPTimeout time.Duration // per-request timeout for both APIs

	// Serve mode
	ListenPort      string        // ex: ":8080"
	SyncInterval    time.Duration // interval between runs in serve mode
	ShutdownTimeout time.Duration // graceful shutdown deadline

	// Redis watermark backend (optional, empty addr = file backend)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts
}

// FileConfig is the optional YAML config file layer. Environment variables
// override anything set here.
type FileConfig struct {
	ReadwiseURL     string `yaml:"readwise_url"`
	PinboardURL     string `yaml:"pinboard_url"`
	StateFile       string `yaml:"state_file"`
	SourceTag       string `yaml:"source_tag"`
	Location        string `yaml:"location"`
	LogLevel        string `yaml:"log_level"`
	PrettyLog       *bool  `yaml:"pretty_log"`
	RateDelay       string `yaml:"rate_limit_delay"`
	HTTPTimeout     string `yaml:"http_timeout"`
	ListenPort      string `yaml:"listen_port"`
	SyncInterval    string `yaml:"sync_interval"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisUser       string `yaml:"redis_username"`
	RedisDB         *int   `yaml:"redis_db"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins). Credentials are
// validated here so a misconfigured run fails before any work happens.
func Load(filePath string) (*Config, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := defaults()

	if filePath != "" {
		if err := applyFile(cfg, filePath); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if cfg.ReadwiseToken == "" {
		return nil, fmt.Errorf("required environment variable READWISE_API_KEY is not set")
	}
	if cfg.PinboardToken == "" {
		return nil, fmt.Errorf("required environment variable PINBOARD_API_TOKEN is not set")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ReadwiseURL:         DefaultReadwiseURL,
		PinboardURL:         DefaultPinboardURL,
		StateFile:           "lastrun",
		SourceTag:           ".from:Reader",
		RateDelay:           3 * time.Second,
		LogLevel:            "info",
		PrettyLog:           true,
		HTTPTimeout:         30 * time.Second,
		ListenPort:          ":8080",
		SyncInterval:        1 * time.Hour,
		ShutdownTimeout:     5 * time.Second,
		RedisUser:           "default",
		RedisConnectTimeout: 30 * time.Second,
		RedisRetryInterval:  2 * time.Second,
		RedisMaxWait:        10 * time.Second,
		RedisPingTimeout:    5 * time.Second,
		RedisWarnThreshold:  3,
	}
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&cfg.ReadwiseURL, fc.ReadwiseURL)
	setString(&cfg.PinboardURL, fc.PinboardURL)
	setString(&cfg.StateFile, fc.StateFile)
	setString(&cfg.SourceTag, fc.SourceTag)
	setString(&cfg.Location, fc.Location)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.ListenPort, fc.ListenPort)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisUser, fc.RedisUser)
	if fc.PrettyLog != nil {
		cfg.PrettyLog = *fc.PrettyLog
	}
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	if err := setDuration(&cfg.RateDelay, fc.RateDelay); err != nil {
		return fmt.Errorf("invalid rate_limit_delay: %w", err)
	}
	if err := setDuration(&cfg.HTTPTimeout, fc.HTTPTimeout); err != nil {
		return fmt.Errorf("invalid http_timeout: %w", err)
	}
	if err := setDuration(&cfg.SyncInterval, fc.SyncInterval); err != nil {
		return fmt.Errorf("invalid sync_interval: %w", err)
	}
	if err := setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	cfg.ReadwiseToken = getenv("READWISE_API_KEY", cfg.ReadwiseToken)
	cfg.PinboardToken = getenv("PINBOARD_API_TOKEN", cfg.PinboardToken)

	cfg.ReadwiseURL = getenv("PINSYNC_READWISE_URL", cfg.ReadwiseURL)
	cfg.PinboardURL = getenv("PINSYNC_PINBOARD_URL", cfg.PinboardURL)
	cfg.StateFile = getenv("PINSYNC_STATE_FILE", cfg.StateFile)
	cfg.SourceTag = getenv("PINSYNC_SOURCE_TAG", cfg.SourceTag)
	cfg.Location = getenv("PINSYNC_LOCATION", cfg.Location)
	cfg.RateDelay = mustDuration("PINSYNC_RATE_LIMIT_DELAY", cfg.RateDelay)

	cfg.LogLevel = getenv("PINSYNC_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("PINSYNC_PRETTY_LOG", cfg.PrettyLog)
	cfg.HTTPTimeout = mustDuration("PINSYNC_HTTP_TIMEOUT", cfg.HTTPTimeout)

	cfg.ListenPort = getenv("PINSYNC_LISTEN_PORT", cfg.ListenPort)
	cfg.SyncInterval = mustDuration("PINSYNC_SYNC_INTERVAL", cfg.SyncInterval)
	cfg.ShutdownTimeout = mustDuration("PINSYNC_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.RedisAddr = getenv("PINSYNC_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisUser = getenv("PINSYNC_REDIS_USERNAME", cfg.RedisUser)
	cfg.RedisPassword = getenv("PINSYNC_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getenvInt("PINSYNC_REDIS_DB", cfg.RedisDB)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
