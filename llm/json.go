package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kbukum/clipkit/errors"
)

// CompleteJSON sends req and decodes the JSON value in the response into
// out. Markdown fences and surrounding prose are tolerated; malformed JSON
// is a parse error carrying the raw response.
func CompleteJSON(ctx context.Context, p Provider, req Request, out any) error {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}
	content := ExtractJSON(resp.Content)
	if content == "" {
		return errors.Parse(p.Name(), resp.Content, nil)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return errors.Parse(p.Name(), resp.Content, err)
	}
	return nil
}

// ExtractJSON pulls the outermost JSON array or object from model output
// that may be wrapped in markdown fences or prose. It returns "" when no
// bracketed value is present.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
