package studio

import (
	"context"
	"os"

	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/provider"
	"github.com/kbukum/clipkit/version"
)

// versioner is implemented by media tools that can report their version.
type versioner interface {
	Version(ctx context.Context) (string, error)
}

// Doctor checks that ffmpeg runs, the fonts directory exists and the
// configured backends are reachable. A missing credential marks a backend
// degraded since only the pipelines that need it fail.
func (s *Studio) Doctor(ctx context.Context) *observability.ServiceHealth {
	checks := []observability.HealthChecker{
		observability.CheckerFunc(s.checkMedia),
		observability.CheckerFunc(s.checkFonts),
		observability.CheckerFunc(func(ctx context.Context) observability.Health {
			p, err := s.speechToText()
			return backendHealth(ctx, "transcription", p, err)
		}),
		observability.CheckerFunc(func(ctx context.Context) observability.Health {
			p := s.llm
			var err error
			if p == nil {
				p, err = s.llmProvider()
			}
			return backendHealth(ctx, "llm", p, err)
		}),
	}
	return observability.Check(ctx, s.cfg.Name, version.Get().Short(), checks...)
}

func (s *Studio) checkMedia(ctx context.Context) observability.Health {
	h := observability.Health{Name: "ffmpeg", Status: observability.HealthStatusUp}
	v, ok := s.media.(versioner)
	if !ok {
		h.Message = "version check not supported"
		return h
	}
	line, err := v.Version(ctx)
	if err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
		return h
	}
	h.Message = line
	return h
}

func (s *Studio) checkFonts(context.Context) observability.Health {
	h := observability.Health{Name: "fonts", Status: observability.HealthStatusUp}
	dir := s.cfg.Media.FontsDir
	if dir == "" {
		h.Status = observability.HealthStatusDegraded
		h.Message = "media.fonts_dir not set, caption widths are estimated"
		return h
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		h.Status = observability.HealthStatusDegraded
		h.Message = dir + " is not a directory, caption widths are estimated"
		return h
	}
	h.Details = map[string]string{"dir": dir}
	return h
}

func backendHealth(ctx context.Context, name string, p provider.Provider, err error) observability.Health {
	h := observability.Health{Name: name, Status: observability.HealthStatusUp}
	switch {
	case err != nil:
		h.Status = observability.HealthStatusDegraded
		h.Message = err.Error()
	case !p.IsAvailable(ctx):
		h.Status = observability.HealthStatusDown
		h.Message = p.Name() + " is not reachable"
	default:
		h.Details = map[string]string{"provider": p.Name()}
	}
	return h
}
