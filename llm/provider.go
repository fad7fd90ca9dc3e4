package llm

import (
	"context"
	"time"

	"github.com/kbukum/clipkit/provider"
)

// Provider is the interface that LLM backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Config selects and configures a backend.
type Config struct {
	// Provider names a registered backend, e.g. "openai".
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Defaults.
const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultTimeout     = 90 * time.Second
	DefaultMaxAttempts = 3
)

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
}

var registry = provider.NewRegistry[Provider, Config]("llm")

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
