package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/clipkit/errors"
)

type testConfig struct {
	Model string
}

// testProvider implements the Provider interface for testing.
type testProvider struct {
	name      string
	model     string
	available bool
}

func (p *testProvider) Name() string                        { return p.name }
func (p *testProvider) IsAvailable(ctx context.Context) bool { return p.available }

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]("llm")
	reg.RegisterFactory("test", func(cfg testConfig) (*testProvider, error) {
		return &testProvider{name: "test", model: cfg.Model, available: true}, nil
	})

	p, err := reg.Create("test", testConfig{Model: "m1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "test" || p.model != "m1" {
		t.Errorf("unexpected provider %+v", p)
	}
}

func TestRegistryCreateUnregistered(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]("transcription")
	reg.RegisterFactory("openai", func(testConfig) (*testProvider, error) { return &testProvider{}, nil })

	_, err := reg.Create("missing", testConfig{})
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' in error, got %q", err.Error())
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]("llm")
	reg.RegisterFactory("beta", func(testConfig) (*testProvider, error) {
		return &testProvider{name: "beta"}, nil
	})
	reg.RegisterFactory("alpha", func(testConfig) (*testProvider, error) {
		return &testProvider{name: "alpha"}, nil
	})

	names := reg.List()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected sorted [alpha, beta], got %v", names)
	}
}
