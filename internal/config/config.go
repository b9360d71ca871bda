package config

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Gemini    GeminiConfig
	Brave     BraveConfig
	Research  ResearchConfig
	Scoring   ScoringConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the optional Postgres opportunity archive.
// An empty host disables archiving.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig configures the vector collection backend. An empty host
// falls back to the in-memory store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GeminiConfig covers both completion/extraction and embeddings. An empty
// APIKey degrades those capabilities rather than failing startup.
type GeminiConfig struct {
	APIKey         string
	Model          string
	FastModel      string
	EmbeddingModel string
	EmbeddingDim   int
}

type BraveConfig struct {
	APIKey  string
	Timeout time.Duration
}

// ResearchConfig holds the deep-research branch policy. The thresholds
// are tunable policy values, not invariants.
type ResearchConfig struct {
	PerplexityAPIKey string
	Model            string
	Timeout          time.Duration
	MinCandidates    int
	MinTopScore      float64
	MaxCandidates    int
}

// ScoringConfig holds the ranking weights. They must sum to 1.
type ScoringConfig struct {
	WeightIncome float64
	WeightEffort float64
	WeightFit    float64
}

// SchedulerConfig enables periodic re-runs of a standing query.
type SchedulerConfig struct {
	Enabled       bool
	IntervalHours int
	StandingQuery string
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	setDefaults()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Gemini: GeminiConfig{
			APIKey:         viper.GetString("GEMINI_API_KEY"),
			Model:          viper.GetString("GEMINI_MODEL"),
			FastModel:      viper.GetString("GEMINI_FAST_MODEL"),
			EmbeddingModel: viper.GetString("GEMINI_EMBEDDING_MODEL"),
			EmbeddingDim:   viper.GetInt("GEMINI_EMBEDDING_DIM"),
		},
		Brave: BraveConfig{
			APIKey:  viper.GetString("BRAVE_API_KEY"),
			Timeout: 30 * time.Second,
		},
		Research: ResearchConfig{
			PerplexityAPIKey: viper.GetString("PERPLEXITY_API_KEY"),
			Model:            viper.GetString("PERPLEXITY_MODEL"),
			Timeout:          60 * time.Second,
			MinCandidates:    viper.GetInt("RESEARCH_MIN_CANDIDATES"),
			MinTopScore:      viper.GetFloat64("RESEARCH_MIN_TOP_SCORE"),
			MaxCandidates:    viper.GetInt("RESEARCH_MAX_CANDIDATES"),
		},
		Scoring: ScoringConfig{
			WeightIncome: viper.GetFloat64("SCORE_WEIGHT_INCOME"),
			WeightEffort: viper.GetFloat64("SCORE_WEIGHT_EFFORT"),
			WeightFit:    viper.GetFloat64("SCORE_WEIGHT_FIT"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       viper.GetBool("SCHEDULER_ENABLED"),
			IntervalHours: viper.GetInt("SCHEDULER_INTERVAL_HOURS"),
			StandingQuery: viper.GetString("SCHEDULER_STANDING_QUERY"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	viper.SetDefault("GEMINI_FAST_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	viper.SetDefault("GEMINI_EMBEDDING_DIM", 768)
	viper.SetDefault("PERPLEXITY_MODEL", "llama-3.1-sonar-large-128k-online")
	viper.SetDefault("RESEARCH_MIN_CANDIDATES", 3)
	viper.SetDefault("RESEARCH_MIN_TOP_SCORE", 0.6)
	viper.SetDefault("RESEARCH_MAX_CANDIDATES", 5)
	viper.SetDefault("SCORE_WEIGHT_INCOME", 0.35)
	viper.SetDefault("SCORE_WEIGHT_EFFORT", 0.35)
	viper.SetDefault("SCORE_WEIGHT_FIT", 0.30)
	viper.SetDefault("SCHEDULER_INTERVAL_HOURS", 6)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	sum := c.Scoring.WeightIncome + c.Scoring.WeightEffort + c.Scoring.WeightFit
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	if c.Research.MinCandidates < 1 {
		return fmt.Errorf("research min candidates must be at least 1")
	}
	if c.Research.MinTopScore < 0 || c.Research.MinTopScore > 1 {
		return fmt.Errorf("research min top score must be in [0,1]")
	}
	if c.Research.MaxCandidates < 1 {
		return fmt.Errorf("research max candidates must be at least 1")
	}
	if c.Gemini.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	if c.Scheduler.Enabled && c.Scheduler.StandingQuery == "" {
		return fmt.Errorf("scheduler requires SCHEDULER_STANDING_QUERY")
	}
	return nil
}

// HasDatabase reports whether the Postgres archive is configured.
func (c *Config) HasDatabase() bool { return c.Database.Host != "" }

// HasRedis reports whether the Redis vector backend is configured.
func (c *Config) HasRedis() bool { return c.Redis.Host != "" }

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
