package transcription

import (
	"context"
	"time"

	"github.com/kbukum/clipkit/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns word timestamps.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Config selects and configures a backend.
type Config struct {
	// Provider names a registered backend: "openai" or "whisper".
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Model    string `yaml:"model" mapstructure:"model"`
	Language string `yaml:"language" mapstructure:"language"`
	// WhisperURL is the sidecar address for the whisper backend.
	WhisperURL  string        `yaml:"whisper_url" mapstructure:"whisper_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Defaults.
const (
	DefaultProvider    = "openai"
	DefaultTimeout     = 2 * time.Minute
	DefaultMaxAttempts = 3
)

// ApplyDefaults fills unset fields. Model defaults are backend specific.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
}

var registry = provider.NewRegistry[Provider, Config]("transcription")

// Register makes a backend available to New. Backends call it from init.
func Register(name string, factory provider.Factory[Provider, Config]) {
	registry.RegisterFactory(name, factory)
}

// Providers lists the registered backend names.
func Providers() []string { return registry.List() }

// New creates the backend named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	cfg.ApplyDefaults()
	return registry.Create(cfg.Provider, cfg)
}
