// Package chapters asks a language model for the chapter list of a long
// video and normalizes it into the "MM:SS - Title" block video platforms
// read from a description.
package chapters
