package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names a speech recognition backend
type Backend string

const (
	// BackendWhisper runs a local whisper.cpp style executable
	BackendWhisper Backend = "whisper"
	// BackendOpenAI calls an OpenAI-compatible transcription API
	BackendOpenAI Backend = "openai"
)

// envPrefix is the prefix for environment overrides, e.g. TRANSKRIPT_BACKEND
const envPrefix = "TRANSKRIPT"

// Config holds the application configuration
type Config struct {
	// Recognition configuration
	Backend Backend `json:"backend" mapstructure:"backend" validate:"required,oneof=whisper openai"`
	Locale  string  `json:"locale" mapstructure:"locale" validate:"required"`

	// Whisper configuration
	WhisperModelPath      string `json:"whisper_model_path" mapstructure:"whisper_model_path"`
	WhisperModelType      string `json:"whisper_model_type" mapstructure:"whisper_model_type" validate:"oneof=tiny base small medium large-v3"`
	WhisperExecutablePath string `json:"whisper_executable_path" mapstructure:"whisper_executable_path"`
	WhisperThreads        int    `json:"whisper_threads" mapstructure:"whisper_threads" validate:"gte=1,lte=64"`
	AllowModelDownload    bool   `json:"allow_model_download" mapstructure:"allow_model_download"`

	// OpenAI-compatible configuration
	OpenAIBaseURL string `json:"openai_base_url" mapstructure:"openai_base_url" validate:"omitempty,url"`
	OpenAIModel   string `json:"openai_model" mapstructure:"openai_model"`
	OpenAIAPIKey  string `json:"-" mapstructure:"openai_api_key"`

	// Transcoding configuration
	FFmpegPath string `json:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	TempDir    string `json:"temp_dir" mapstructure:"temp_dir"`

	// Output configuration
	WriteMarkdown   bool `json:"write_markdown" mapstructure:"write_markdown"`
	CopyToClipboard bool `json:"copy_to_clipboard" mapstructure:"copy_to_clipboard"`

	// UI configuration
	TerminalMode bool   `json:"terminal_mode" mapstructure:"terminal_mode"`
	LogLevel     string `json:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn warning error silent off none"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	// Get the .transkript directory for models
	modelDir := "./models/" // Default fallback
	if dir, err := GetModelDir(); err == nil {
		modelDir = dir
	}

	return &Config{
		Backend: BackendWhisper,
		Locale:  "sk-SK",

		WhisperModelPath:   modelDir,
		WhisperModelType:   "small",
		WhisperThreads:     4,
		AllowModelDownload: true,

		OpenAIModel: "whisper-1",

		WriteMarkdown:   true,
		CopyToClipboard: false,

		TerminalMode: false,
		LogLevel:     "info",
	}
}

// Current holds the active configuration
var Current = DefaultConfig()

var validate = validator.New()

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Backend == BackendOpenAI && c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
		return fmt.Errorf("invalid configuration: openai backend requires an API key or a base URL")
	}
	return nil
}

// GetAppDir returns the path to the .transkript directory
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, ".transkript")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create .transkript directory: %w", err)
	}

	return appDir, nil
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.json"), nil
}

// GetModelDir returns the path to the model directory
func GetModelDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	modelDir := filepath.Join(appDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	return modelDir, nil
}

// LoadConfig loads the configuration from the default config file,
// creating it with defaults when it does not exist yet
func LoadConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Only defaults are written; environment overrides stay out of the file
		Current = DefaultConfig()
		if err := SaveConfig(); err != nil {
			return err
		}
		applyEnv(Current)
		return Current.Validate()
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return err
	}
	Current = cfg
	return nil
}

// LoadFrom reads a config file, layering it over the defaults and
// applying TRANSKRIPT_* environment overrides. A .env file next to the
// config file, or in the working directory, is loaded first.
func LoadFrom(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	loadDotEnv(".env")

	v := newViper(DefaultConfig())
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig saves the current configuration to the default config file
func SaveConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}
	return SaveConfigTo(configPath)
}

// SaveConfigTo writes the current configuration as JSON to path
func SaveConfigTo(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(Current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// API keys are never written; they come from the environment
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// newViper returns a viper instance seeded with defaults and bound to
// the TRANSKRIPT_* environment
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", string(defaults.Backend))
	v.SetDefault("locale", defaults.Locale)
	v.SetDefault("whisper_model_path", defaults.WhisperModelPath)
	v.SetDefault("whisper_model_type", defaults.WhisperModelType)
	v.SetDefault("whisper_executable_path", defaults.WhisperExecutablePath)
	v.SetDefault("whisper_threads", defaults.WhisperThreads)
	v.SetDefault("allow_model_download", defaults.AllowModelDownload)
	v.SetDefault("openai_base_url", defaults.OpenAIBaseURL)
	v.SetDefault("openai_model", defaults.OpenAIModel)
	v.SetDefault("openai_api_key", defaults.OpenAIAPIKey)
	v.SetDefault("ffmpeg_path", defaults.FFmpegPath)
	v.SetDefault("temp_dir", defaults.TempDir)
	v.SetDefault("write_markdown", defaults.WriteMarkdown)
	v.SetDefault("copy_to_clipboard", defaults.CopyToClipboard)
	v.SetDefault("terminal_mode", defaults.TerminalMode)
	v.SetDefault("log_level", defaults.LogLevel)

	// Also accept the conventional OPENAI_API_KEY
	_ = v.BindEnv("openai_api_key", envPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	return v
}

// applyEnv overlays environment overrides onto cfg
func applyEnv(cfg *Config) {
	loadDotEnv(".env")
	v := newViper(cfg)
	var out Config
	if err := v.Unmarshal(&out); err == nil {
		*cfg = out
	}
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err == nil {
		// Existing environment variables take precedence
		_ = godotenv.Load(path)
	}
}
