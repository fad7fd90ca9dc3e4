// Package assemble executes a segment plan against a source video: each kept
// segment is cut into a request workspace and the clips are joined by
// concatenation or, for compilations, by crossfading.
//
// The workspace is released on every path, including failures.
package assemble
