package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quizgen-service/internal/llm"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
		Instance     string `yaml:"instance"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Tracing struct {
		Endpoint   string  `yaml:"endpoint"`
		Insecure   bool    `yaml:"insecure"`
		SampleRate float64 `yaml:"sampleRate"`
	} `yaml:"tracing"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL             string  `yaml:"ttl"`
		MaxTokens       int     `yaml:"maxTokens"`
		Temperature     float64 `yaml:"temperature"`
		MaxSourceChars  int     `yaml:"maxSourceChars"`
		GenerateTimeout string  `yaml:"generateTimeout"`
	} `yaml:"quiz"`
	Source struct {
		MaxPDFBytes  int64  `yaml:"maxPdfBytes"`
		MaxPageBytes int64  `yaml:"maxPageBytes"`
		FetchTimeout string `yaml:"fetchTimeout"`
	} `yaml:"source"`
	LLM struct {
		Provider  string `yaml:"provider"`
		Timeout   string `yaml:"timeout"`
		Anthropic struct {
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"baseUrl"`
		} `yaml:"anthropic"`
		OpenAI struct {
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"baseUrl"`
		} `yaml:"openai"`
		Gemini struct {
			APIKey string `yaml:"apiKey"`
			Model  string `yaml:"model"`
		} `yaml:"gemini"`
		Retry struct {
			MaxAttempts int     `yaml:"maxAttempts"`
			InitialWait string  `yaml:"initialWait"`
			MaxWait     string  `yaml:"maxWait"`
			Multiplier  float64 `yaml:"multiplier"`
		} `yaml:"retry"`
	} `yaml:"llm"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error: the service can run from env alone.
// Variables from a .env file in the working directory are loaded first.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Instance, "INSTANCE_ID")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.LLM.Anthropic.Model, "ANTHROPIC_MODEL")
	setString(&cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.OpenAI.Model, "OPENAI_MODEL")
	setString(&cfg.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.Gemini.Model, "GEMINI_MODEL")

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// LLMConfig converts the llm section, filling gaps from llm.DefaultConfig.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		out.Provider = c.LLM.Provider
	}
	out.Timeout = TTLDuration(c.LLM.Timeout, out.Timeout)

	out.Anthropic.APIKey = c.LLM.Anthropic.APIKey
	out.Anthropic.BaseURL = c.LLM.Anthropic.BaseURL
	if c.LLM.Anthropic.Model != "" {
		out.Anthropic.Model = c.LLM.Anthropic.Model
	}
	out.OpenAI.APIKey = c.LLM.OpenAI.APIKey
	out.OpenAI.BaseURL = c.LLM.OpenAI.BaseURL
	if c.LLM.OpenAI.Model != "" {
		out.OpenAI.Model = c.LLM.OpenAI.Model
	}
	out.Gemini.APIKey = c.LLM.Gemini.APIKey
	if c.LLM.Gemini.Model != "" {
		out.Gemini.Model = c.LLM.Gemini.Model
	}

	retry := c.LLM.Retry
	if retry.MaxAttempts > 0 {
		out.Retry.MaxAttempts = retry.MaxAttempts
	}
	if retry.Multiplier > 0 {
		out.Retry.Multiplier = retry.Multiplier
	}
	out.Retry.InitialWait = TTLDuration(retry.InitialWait, out.Retry.InitialWait)
	out.Retry.MaxWait = TTLDuration(retry.MaxWait, out.Retry.MaxWait)
	return out
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
