package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultProviderType   = "ollama"
	DefaultBaseURL        = "http://localhost:11434"
	DefaultModel          = "llama3.1:latest"
	DefaultConversation   = "default"
	DefaultCooldown       = time.Hour
	DefaultRequestTimeout = 120 * time.Second
	DefaultSavedTopic     = "Saved Message"
)

// Environment variables
const (
	EnvProvider = "TREECHAT_PROVIDER"
	EnvBaseURL  = "TREECHAT_BASE_URL"
	EnvModel    = "TREECHAT_MODEL"
	EnvDataDir  = "TREECHAT_DATA_DIR"
	EnvAPIKey   = "TREECHAT_API_KEY"
	EnvDebug    = "TREECHAT_DEBUG"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	Type         string `toml:"type"`
	BaseURL      string `toml:"base_url"`
	Model        string `toml:"model"`
	Conversation string `toml:"conversation"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

type ChatConfig struct {
	Cooldown       string `toml:"cooldown"`
	RequestTimeout string `toml:"request_timeout"`
	UsageLimit     int    `toml:"usage_limit"`
	DefaultTopic   string `toml:"default_topic"`
}

type UserConfig struct {
	Provider ProviderConfig `toml:"provider"`
	Chat     ChatConfig     `toml:"chat"`
}

// Config is the resolved runtime configuration
type Config struct {
	DataDirectory string

	ProviderType string
	BaseURL      string
	Model        string
	Conversation string
	SystemPrompt string
	APIKey       string // Environment only, never written to disk

	Cooldown       time.Duration
	RequestTimeout time.Duration
	UsageLimit     int
	DefaultTopic   string

	Keybindings *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyUserConfig(userCfg *UserConfig) error {
	if userCfg.Provider.Type != "" {
		c.ProviderType = userCfg.Provider.Type
	}
	if userCfg.Provider.BaseURL != "" {
		c.BaseURL = userCfg.Provider.BaseURL
	}
	if userCfg.Provider.Model != "" {
		c.Model = userCfg.Provider.Model
	}
	if userCfg.Provider.Conversation != "" {
		c.Conversation = userCfg.Provider.Conversation
	}
	c.SystemPrompt = userCfg.Provider.SystemPrompt

	if userCfg.Chat.Cooldown != "" {
		d, err := parsePositiveDuration("chat.cooldown", userCfg.Chat.Cooldown)
		if err != nil {
			return err
		}
		c.Cooldown = d
	}
	if userCfg.Chat.RequestTimeout != "" {
		d, err := parsePositiveDuration("chat.request_timeout", userCfg.Chat.RequestTimeout)
		if err != nil {
			return err
		}
		c.RequestTimeout = d
	}
	if userCfg.Chat.UsageLimit < 0 {
		return fmt.Errorf("invalid chat.usage_limit %d: must not be negative", userCfg.Chat.UsageLimit)
	}
	c.UsageLimit = userCfg.Chat.UsageLimit
	if userCfg.Chat.DefaultTopic != "" {
		c.DefaultTopic = userCfg.Chat.DefaultTopic
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if providerType := os.Getenv(EnvProvider); providerType != "" {
		c.ProviderType = providerType
	}
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		c.BaseURL = baseURL
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.Model = model
	}
	if apiKey := os.Getenv(EnvAPIKey); apiKey != "" {
		c.APIKey = apiKey
	}
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return d, nil
}

func CheckDebug() bool {
	debug := os.Getenv(EnvDebug)
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain message content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (%s=%s) ===", EnvDebug, os.Getenv(EnvDebug))
	DebugLog.Printf("Log path: %s", logPath)
}

// Defaults returns the built-in configuration before any file or env is read
func Defaults() *Config {
	return &Config{
		DataDirectory:  GetDefaultDataDir(),
		ProviderType:   DefaultProviderType,
		BaseURL:        DefaultBaseURL,
		Model:          DefaultModel,
		Conversation:   DefaultConversation,
		Cooldown:       DefaultCooldown,
		RequestTimeout: DefaultRequestTimeout,
		DefaultTopic:   DefaultSavedTopic,
		Keybindings:    DefaultKeybindings(),
	}
}

// Load resolves configuration in order: defaults, settings.toml (data
// directory), <data_dir>/config.toml, then environment overrides. Missing
// files are created from commented templates.
func Load() (*Config, error) {
	cfg := Defaults()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	if systemCfg.DataDirectory != "" {
		cfg.DataDirectory = systemCfg.DataDirectory
	}
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	if err := LoadInto(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads the user config and keybindings from cfg's data directory
// and applies environment overrides.
func LoadInto(cfg *Config) error {
	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}
	if err := cfg.applyUserConfig(userCfg); err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	keybindings, err := LoadKeybindings(dataDir)
	if err != nil {
		return err
	}
	cfg.Keybindings = keybindings

	cfg.applyEnvOverrides()
	return nil
}
