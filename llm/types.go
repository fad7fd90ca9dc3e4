package llm

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role" yaml:"role"` // "system", "user", "assistant"
	Content string `json:"content" yaml:"content"`
}

// UserMessage returns a user-role message.
func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

// Request is the provider-independent completion input.
type Request struct {
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
	// System is sent as the leading system message.
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	// Temperature overrides the configured sampling temperature when set.
	Temperature *float64 `json:"temperature,omitempty"`
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Schema asks for a response conforming to a JSON schema, when the
	// backend supports it.
	Schema *Schema `json:"-"`
}

// Response is the provider-independent completion output.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
