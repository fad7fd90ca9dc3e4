package transcription

import "github.com/kbukum/clipkit/transcript"

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
	// Offset is added to every returned timestamp, for audio extracted from
	// a region of a longer source.
	Offset float64 `json:"offset,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Words are time-aligned words in the audio's timebase.
	Words []transcript.Word `json:"words"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// NoSpeech reports whether the audio contained no recognizable words.
func (r *Response) NoSpeech() bool { return r == nil || len(r.Words) == 0 }
