package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/transcription"
)

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe_SegmentWords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.FormValue("word_timestamps"); got != "true" {
			t.Errorf("word_timestamps = %q", got)
		}
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("model = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":     "hello world",
			"language": "en",
			"segments": []map[string]any{{
				"text": "hello world", "start": 0.0, "end": 1.0,
				"words": []map[string]any{
					{"word": " hello", "start": 0.0, "end": 0.4},
					{"word": " world", "start": 0.5, "end": 1.0},
				},
			}},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: audioFile(t)})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Words) != 2 || resp.Words[1].Start != 0.5 {
		t.Errorf("words = %+v", resp.Words)
	}
	if resp.Duration != 1.0 {
		t.Errorf("duration = %v", resp.Duration)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: audioFile(t)})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeExternalService || !appErr.Retryable {
		t.Errorf("err = %v", err)
	}
}

func TestTranscribe_MissingAudio(t *testing.T) {
	p := NewProvider(Config{URL: "http://127.0.0.1:1"})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: "/nonexistent.mp3"})
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if !NewProvider(Config{URL: srv.URL}).IsAvailable(context.Background()) {
		t.Error("expected sidecar to be available")
	}
}

func TestRegistered(t *testing.T) {
	p, err := transcription.New(transcription.Config{Provider: ProviderName, WhisperURL: "http://sidecar:8387"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name = %s", p.Name())
	}
}
