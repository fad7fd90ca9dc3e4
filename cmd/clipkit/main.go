// Command clipkit captions, tightens, compiles and reframes videos.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/clipkit/errors"

	_ "github.com/kbukum/clipkit/llm/openai"
	_ "github.com/kbukum/clipkit/transcription/openai"
	_ "github.com/kbukum/clipkit/transcription/whisper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp().execute(ctx, nil)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// reportError writes an AppError to w as a JSON error envelope. Flag
// parsing and other plain errors are printed as text.
func reportError(w io.Writer, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		if json.NewEncoder(w).Encode(appErr.ToResponse()) == nil {
			return
		}
	}
	fmt.Fprintln(w, "error:", err)
}

// exitCode is 2 for problems the caller can fix and 1 for everything else.
func exitCode(err error) int {
	if errors.IsCode(err, errors.ErrCodeInvalidInput) ||
		errors.IsCode(err, errors.ErrCodeConfiguration) ||
		errors.IsCode(err, errors.ErrCodeMissingField) {
		return 2
	}
	return 1
}
