// Package transcript defines the timestamped word sequence shared by the
// caption and gap pipelines, the ingestion rules that make a raw recognizer
// result safe to use, and the timestamp notation used by moment detection.
package transcript
