// Package llm is the language-model collaborator: a provider interface, a
// registry of named backends, structured JSON completion and a retrying,
// time-bounded wrapper.
//
// # Usage
//
//	p, err := llm.New(cfg) // cfg.Provider selects a registered backend
//	p = llm.WithResilience(p, cfg)
//
//	var out struct{ Moments []Moment `json:"moments"` }
//	err = llm.CompleteJSON(ctx, p, llm.Request{
//	    System:   "You pick highlights.",
//	    Messages: []llm.Message{llm.UserMessage(transcript)},
//	    Schema:   llm.SchemaFor[Response]("moments", "Selected highlights"),
//	}, &out)
//
// Backends register themselves from their own packages:
//
//	import _ "github.com/kbukum/clipkit/llm/openai"
package llm
