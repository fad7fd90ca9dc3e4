// Package config loads clipkit configuration.
//
// Values come from an optional YAML file (./cmd/clipkit/config.yml by
// default), an optional .env file, and the process environment, in that
// order of increasing precedence. Environment variables address nested keys
// with underscores, e.g. LLM_API_KEY sets llm.api_key.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("clipkit", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Validate checks ranges only. Credentials are checked when a request needs
// them, via RequireTranscription and RequireLLM, so commands that never call
// a remote backend run without an API key.
package config
