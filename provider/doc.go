// Package provider holds the small contract shared by swappable backends
// (speech-to-text, language models): a name, an availability probe, and a
// registry that builds instances from typed configuration.
//
//	reg := provider.NewRegistry[transcription.Provider, transcription.Config]("transcription")
//	reg.RegisterFactory("openai", openai.New)
//	p, err := reg.Create(cfg.Provider, cfg)
package provider
