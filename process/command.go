package process

import (
	"io"
	"strings"
	"time"
)

// Command describes one invocation of an external tool.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. Empty uses the current directory.
	Dir string
	// Env holds extra key=value pairs appended to the inherited environment.
	Env []string
	// Stdin feeds the process. May be nil.
	Stdin io.Reader
	// GracePeriod is the wait between SIGTERM and SIGKILL on cancellation.
	// Zero means 5 seconds.
	GracePeriod time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}
