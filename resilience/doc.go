// Package resilience guards calls to external collaborators.
//
//   - Retry re-runs a call with exponential backoff while its error is
//     retryable. Parse, validation and configuration errors are final.
//   - CircuitBreaker fails fast once the codec tool keeps crashing, instead
//     of letting every queued request wait for the same failure.
//   - Bulkhead bounds how many encoder processes run at once across
//     concurrent requests.
//
// Typical wiring for a transcription call:
//
//	resp, err := resilience.Retry(ctx, resilience.RetryConfigFor("transcription", 3), func() (*Response, error) {
//	    return provider.Transcribe(ctx, req)
//	})
package resilience
