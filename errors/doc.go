// Package errors provides the structured error taxonomy used by every clipkit
// pipeline. Errors carry a machine-readable code, a retryable flag, an HTTP
// status hint for the serving layer, and free-form details such as the failing
// field or pipeline step.
//
// The codes map onto the failure classes callers need to tell apart:
//
//	CONFIGURATION_ERROR     missing credential, raised before any temp file exists
//	INVALID_INPUT           bad request data, Details["field"] names the field
//	EXTERNAL_SERVICE_ERROR  transcription, LLM or codec tool failure
//	PARSE_ERROR             the language model answered with malformed JSON
//	TIMEOUT                 a bounded external call ran out of time
package errors
