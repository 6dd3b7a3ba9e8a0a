package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sankhya   SankhyaConfig   `yaml:"sankhya" mapstructure:"sankhya"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SankhyaConfig holds the ERP gateway location and static login credentials.
type SankhyaConfig struct {
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	Token            string  `yaml:"token" mapstructure:"token"`
	AppKey           string  `yaml:"app_key" mapstructure:"app_key"`
	Username         string  `yaml:"username" mapstructure:"username"`
	Password         string  `yaml:"password" mapstructure:"password"`
	LoginTimeoutSecs int     `yaml:"login_timeout_secs" mapstructure:"login_timeout_secs"`
	QueryTimeoutSecs int     `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LLMConfig selects the chat provider and its generation settings.
type LLMConfig struct {
	Provider        string  `yaml:"provider" mapstructure:"provider"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// CacheConfig configures the analysis snapshot cache.
type CacheConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	TTLSecs     int    `yaml:"ttl_secs" mapstructure:"ttl_secs"`

	SweepIntervalSecs int `yaml:"sweep_interval_secs" mapstructure:"sweep_interval_secs"`
}

// AnalysisConfig configures snapshot aggregation.
type AnalysisConfig struct {
	DefaultDays int `yaml:"default_days" mapstructure:"default_days"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" mapstructure:"cors_allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps keys to the unprefixed variable names older deployments set.
var legacyEnv = map[string]string{
	"sankhya.token":    "SANKHYA_TOKEN",
	"sankhya.app_key":  "SANKHYA_APPKEY",
	"sankhya.username": "SANKHYA_USERNAME",
	"sankhya.password": "SANKHYA_PASSWORD",
	"gemini.key":       "GEMINI_API_KEY",
	"anthropic.key":    "ANTHROPIC_API_KEY",
	"cache.redis_url":  "REDIS_URL",
}

// Load reads configuration from file and environment. An empty path looks
// for an optional config.yaml in the working directory; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Prefixed names win over the legacy ones.
	for key, legacy := range legacyEnv {
		envKey := "ASSISTANT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("sankhya.base_url", "https://api.sandbox.sankhya.com.br")
	v.SetDefault("sankhya.login_timeout_secs", 10)
	v.SetDefault("sankhya.query_timeout_secs", 30)
	v.SetDefault("sankhya.rate_limit", 0)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 1500)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("cache.backend", "redis")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.sqlite_path", "assistant-cache.db")
	v.SetDefault("cache.ttl_secs", 1800)
	v.SetDefault("cache.sweep_interval_secs", 600)
	v.SetDefault("analysis.default_days", 90)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present.
// Modes: serve, analysis, export.
func (c *Config) Validate(mode string) error {
	var problems []string
	require := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "serve":
		c.validateSankhya(require)
		c.validateCache(require)
		c.validateLLM(require)
		require(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be > 0 and < 65536")
	case "analysis", "export":
		c.validateSankhya(require)
		c.validateCache(require)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	require(c.Analysis.DefaultDays > 0, "analysis.default_days must be > 0")

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateSankhya(require func(bool, string)) {
	require(c.Sankhya.BaseURL != "", "sankhya.base_url is required")
	require(c.Sankhya.Token != "", "sankhya.token is required")
	require(c.Sankhya.AppKey != "", "sankhya.app_key is required")
	require(c.Sankhya.Username != "", "sankhya.username is required")
	require(c.Sankhya.Password != "", "sankhya.password is required")
}

func (c *Config) validateCache(require func(bool, string)) {
	require(c.Cache.TTLSecs > 0, "cache.ttl_secs must be > 0")
	switch c.Cache.Backend {
	case "redis":
		require(c.Cache.RedisURL != "", "cache.redis_url is required")
	case "postgres":
		require(c.Cache.DatabaseURL != "", "cache.database_url is required")
	case "sqlite":
		require(c.Cache.SQLitePath != "", "cache.sqlite_path is required")
	case "memory":
	default:
		require(false, "cache.backend must be one of redis, postgres, sqlite, memory")
	}
}

func (c *Config) validateLLM(require func(bool, string)) {
	switch c.LLM.Provider {
	case "gemini":
		require(c.Gemini.Key != "", "gemini.key is required")
		require(c.Gemini.Model != "", "gemini.model is required")
	case "anthropic":
		require(c.Anthropic.Key != "", "anthropic.key is required")
		require(c.Anthropic.Model != "", "anthropic.model is required")
	default:
		require(false, "llm.provider must be gemini or anthropic")
	}
	require(c.LLM.Temperature >= 0 && c.LLM.Temperature <= 2, "llm.temperature must be between 0 and 2")
	require(c.LLM.MaxOutputTokens > 0, "llm.max_output_tokens must be > 0")
	require(c.LLM.TimeoutSecs >= 0, "llm.timeout_secs must be >= 0")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
