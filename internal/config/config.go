package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env    string `mapstructure:"env"`    // current application environment (local, dev, production etc)
	Server Server `mapstructure:"server"` // backend HTTP server section
	Client Client `mapstructure:"client"` // quiz client section
	LLM    LLM    `mapstructure:"llm"`    // grading model section
	Data   Data   `mapstructure:"data"`   // question bank and test config files
}

// Server contains backend HTTP server parameters.
type Server struct {
	Addr            string        `mapstructure:"addr"`             // listen address
	StaticDir       string        `mapstructure:"static_dir"`       // built front end served in production
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // graceful shutdown deadline
}

// Client contains parameters for the question/answer HTTP client.
type Client struct {
	BaseURL string        `mapstructure:"base_url"` // backend base URL
	Timeout time.Duration `mapstructure:"timeout"`  // per-request timeout
}

// LLM contains grading model parameters. API keys are loaded from the
// environment only; with no keys set, LLM grading is disabled and the
// grader relies on accepted-answer matching alone.
type LLM struct {
	GroqAPIKey   string `mapstructure:"-"`
	GeminiAPIKey string `mapstructure:"-"`
	Model        string `mapstructure:"model"` // chat model used for grading
}

// Data contains paths to the read-only reference data files.
type Data struct {
	QuestionsDir    string `mapstructure:"questions_dir"`     // directory with civics-<variant>.json banks
	TestConfigsPath string `mapstructure:"test_configs_path"` // JSON file with test variant definitions
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "client/dist")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("data.questions_dir", "assets/data")
	v.SetDefault("data.test_configs_path", "assets/data/test-configs.json")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables. Both keys are
	// optional; grading works without them.
	cfg.LLM.GroqAPIKey = v.GetString("groq_api_key")
	cfg.LLM.GeminiAPIKey = v.GetString("gemini_api_key")

	return &cfg, nil
}
