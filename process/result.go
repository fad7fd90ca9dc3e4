package process

import "time"

// Result holds the output and status of a finished subprocess.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 if the process was killed or never started
	Duration time.Duration
}

// StderrTail returns at most the last n bytes of stderr. Encoder tools print
// their banner first and the actual failure last.
func (r *Result) StderrTail(n int) string {
	if r == nil {
		return ""
	}
	if len(r.Stderr) <= n {
		return string(r.Stderr)
	}
	return string(r.Stderr[len(r.Stderr)-n:])
}
