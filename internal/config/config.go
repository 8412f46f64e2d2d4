package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RishiKendai/duplink/internal/configs/env"
	"github.com/RishiKendai/duplink/internal/duplink"
)

// DetectionConfig holds the duplicate detection parameters
type DetectionConfig struct {
	Gap       float64 `yaml:"gap"`
	Penalty   float64 `yaml:"penalty"`
	MinScore  float64 `yaml:"min_score"`
	Tokenized bool    `yaml:"tokenized"`
	Workers   int     `yaml:"workers"`
}

// Options converts the detection parameters to linker options
func (d DetectionConfig) Options() duplink.Options {
	return duplink.Options{
		Gap:      d.Gap,
		Penalty:  d.Penalty,
		MinScore: d.MinScore,
		Workers:  d.Workers,
	}
}

// loadEnv reads the DUPLINK_* keys. A malformed value is a configuration
// error rather than a silent fallback to the default.
func (d *DetectionConfig) loadEnv() error {
	defaults := duplink.DefaultOptions()
	var err error
	if d.Gap, err = env.LookupEnvFloat("DUPLINK_GAP", defaults.Gap); err != nil {
		return fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	if d.Penalty, err = env.LookupEnvFloat("DUPLINK_PENALTY", defaults.Penalty); err != nil {
		return fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	if d.MinScore, err = env.LookupEnvFloat("DUPLINK_MIN_SCORE", defaults.MinScore); err != nil {
		return fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	if d.Tokenized, err = env.LookupEnvBool("DUPLINK_TOKENIZED", false); err != nil {
		return fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	if d.Workers, err = env.LookupEnvInt("DUPLINK_WORKERS", 0); err != nil {
		return fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	return nil
}

func (d DetectionConfig) Validate() error {
	return d.Options().Validate()
}

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string `yaml:"mongo_uri"`
	MongoDBName string `yaml:"mongo_db_name"`

	// Redis
	RedisHost               string        `yaml:"redis_host"`
	RedisPassword           string        `yaml:"-"`
	RedisStreamKey          string        `yaml:"redis_stream_key"`
	RedisConsumerGroup      string        `yaml:"redis_consumer_group"`
	RedisDeadLetterKey      string        `yaml:"redis_dead_letter_key"`
	StreamRetentionDuration time.Duration `yaml:"stream_retention"`

	// JWT
	JWTSecret string `yaml:"-"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Rate Limiting
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// Concurrency
	MaxConcurrentCompute int `yaml:"max_concurrent_compute"`

	// Computation
	ComputationTimeout time.Duration `yaml:"computation_timeout"`

	// Detection
	Detection DetectionConfig `yaml:"detection"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Server
	ServerPort  string `yaml:"server_port"`
	MetricsPort string `yaml:"metrics_port"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "duplink:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "duplink:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "duplink:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "duplink")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 30)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Detection
	if err := cfg.Detection.loadEnv(); err != nil {
		return nil, err
	}

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

// LoadFile overlays the values set in a YAML file onto cfg. Keys missing
// from the file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing YAML %s: %v", duplink.ErrConfig, path, err)
	}
	return nil
}

// Validate checks the settings required by the service mode
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("%w: MONGO_URI is required", duplink.ErrConfig)
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("%w: MONGO_DB_NAME is required", duplink.ErrConfig)
	}
	if c.RedisHost == "" {
		return fmt.Errorf("%w: REDIS_HOST is required", duplink.ErrConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", duplink.ErrConfig)
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("%w: MAX_CONCURRENT_COMPUTE must be greater than 0", duplink.ErrConfig)
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("%w: STREAM_RETENTION_DURATION must be greater than 0", duplink.ErrConfig)
	}
	return c.Detection.Validate()
}
