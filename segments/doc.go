// Package segments plans which parts of a source video are kept.
//
// Silence removal derives kept segments from the words and the gaps
// detected between them, padding each side so speech is not clipped.
// Compilation takes an explicit list of moments in display order. Two
// editor operations, slicing at cut points and removing cut ranges, are
// expressed as segment plans as well. Execution lives in package assemble.
package segments
