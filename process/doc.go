// Package process runs external tools such as ffmpeg and ffprobe.
//
// Run starts a command in its own process group and kills the whole group
// when the context ends. Runner adds shared guards on top: a bulkhead that
// bounds concurrent encodes and a circuit breaker that stops sending work
// to a tool that keeps crashing.
package process
