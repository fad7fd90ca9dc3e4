// Package transcription defines the speech-to-text collaborator: a provider
// interface returning word-level timestamps, a registry of named backends
// and a retrying, time-bounded wrapper.
//
// # Backends
//
//   - transcription/openai: OpenAI audio transcriptions (whisper-1, word granularity)
//   - transcription/whisper: self-hosted faster-whisper HTTP sidecar
//
// # Usage
//
//	p, err := transcription.New(cfg)
//	p = transcription.WithResilience(p, cfg)
//	words, report, err := transcription.Words(ctx, p, transcription.Request{AudioPath: "audio.mp3"})
//
// An empty word list means no speech was detected; it is not an error.
package transcription
