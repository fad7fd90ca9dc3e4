package moments

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/llm"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/segments"
)

// Kind selects the selection strategy.
type Kind string

const (
	// BestOf picks moments for a horizontal compilation, ordered for flow.
	BestOf Kind = "bestof"
	// Shorts picks standalone vertical clips, ranked by viral score.
	Shorts Kind = "shorts"
)

// Count limits per kind.
const (
	MaxBestOfClips  = 20
	MaxShortsClips  = 10
	MaxCuratorClips = 15
)

// Defaults.
const (
	DefaultBestOfClips    = 5
	DefaultShortsClips    = 3
	DefaultTargetMinutes  = 10
	DefaultAvgClipSeconds = 60
	DefaultMaxClipSeconds = 120
)

// Query describes one detection request.
type Query struct {
	// Transcript is the timestamped text the model reads, e.g. "[MM:SS] text" lines.
	Transcript string
	Count      int
	// Guidance is optional free-form direction from the user.
	Guidance string
	Kind     Kind
	// Curator raises the shorts limit so a user can choose among more clips.
	Curator        bool
	MaxClipSeconds int
	TargetMinutes  int
	AvgClipSeconds int
}

// normalized clamps Count and fills defaults.
func (q Query) normalized() Query {
	if q.Kind == "" {
		q.Kind = BestOf
	}
	limit, def := MaxBestOfClips, DefaultBestOfClips
	if q.Kind == Shorts {
		limit, def = MaxShortsClips, DefaultShortsClips
		if q.Curator {
			limit = MaxCuratorClips
		}
	}
	if q.Count == 0 {
		q.Count = def
	}
	q.Count = max(1, min(limit, q.Count))
	if q.TargetMinutes <= 0 {
		q.TargetMinutes = DefaultTargetMinutes
	}
	if q.AvgClipSeconds <= 0 {
		q.AvgClipSeconds = DefaultAvgClipSeconds
	}
	if q.MaxClipSeconds <= 0 {
		q.MaxClipSeconds = DefaultMaxClipSeconds
	}
	return q
}

// Wire types for structured output. Every field is required so the schema
// is accepted in strict mode.
type bestOfMoment struct {
	Start  string `json:"start_time" jsonschema:"description=Start timestamp as MM:SS or HH:MM:SS"`
	End    string `json:"end_time" jsonschema:"description=End timestamp as MM:SS or HH:MM:SS"`
	Title  string `json:"title" jsonschema:"description=Short descriptive title"`
	Reason string `json:"reason" jsonschema:"description=Why this moment is highlight-worthy"`
	Order  int    `json:"order" jsonschema:"description=Position in the compilation starting at 1"`
}

type shortMoment struct {
	Start      string `json:"start_time" jsonschema:"description=Start timestamp as MM:SS or HH:MM:SS"`
	End        string `json:"end_time" jsonschema:"description=End timestamp as MM:SS or HH:MM:SS"`
	Title      string `json:"title" jsonschema:"description=Short catchy title for the clip"`
	Reason     string `json:"reason" jsonschema:"description=Why this moment is interesting"`
	ViralScore int    `json:"viral_score" jsonschema:"description=Viral potential from 1 to 10"`
}

var (
	bestOfSchema = llm.SchemaFor[struct {
		Moments []bestOfMoment `json:"moments"`
	}]("highlight_moments", "Moments selected for a best-of compilation")
	shortsSchema = llm.SchemaFor[struct {
		Moments []shortMoment `json:"moments"`
	}]("short_moments", "Moments selected for vertical shorts")
)

// Detector selects moments with a language model.
type Detector struct {
	provider llm.Provider
	log      *logger.Logger
}

// NewDetector creates a Detector on p. Wrap p with llm.WithResilience to
// bound and retry calls.
func NewDetector(p llm.Provider) *Detector {
	return &Detector{provider: p, log: logger.WithComponent("moments")}
}

// Detect returns moments for q. Best-of moments are ordered by their order
// field; shorts are ranked by viral score and renumbered 1..n in that rank.
func (d *Detector) Detect(ctx context.Context, q Query) ([]segments.Moment, error) {
	if strings.TrimSpace(q.Transcript) == "" {
		return nil, errors.InvalidInput("transcript", "transcript is empty")
	}
	q = q.normalized()

	req := llm.Request{Messages: []llm.Message{llm.UserMessage(bestOfPrompt(q))}, Schema: bestOfSchema}
	if q.Kind == Shorts {
		req = llm.Request{Messages: []llm.Message{llm.UserMessage(shortsPrompt(q))}, Schema: shortsSchema}
	}

	var raw json.RawMessage
	if err := llm.CompleteJSON(ctx, d.provider, req, &raw); err != nil {
		return nil, err
	}
	moments, err := decodeMoments(raw)
	if err != nil {
		return nil, errors.Parse(d.provider.Name(), string(raw), err)
	}
	if len(moments) == 0 {
		return nil, errors.Parse(d.provider.Name(), string(raw), fmt.Errorf("no moments in response"))
	}
	if len(moments) != q.Count {
		d.log.WithContext(ctx).Warn("moment count differs from request", logger.Fields(
			"requested", q.Count, "returned", len(moments), "kind", string(q.Kind)))
	}

	if q.Kind == Shorts {
		sort.SliceStable(moments, func(i, j int) bool { return moments[i].ViralScore > moments[j].ViralScore })
		for i := range moments {
			moments[i].Order = i + 1
		}
	} else {
		sort.SliceStable(moments, func(i, j int) bool { return moments[i].Order < moments[j].Order })
	}
	d.log.WithContext(ctx).Info("moments detected", logger.Fields("count", len(moments), "kind", string(q.Kind)))
	return moments, nil
}

// decodeMoments accepts either a bare array or an object with a "moments"
// array.
func decodeMoments(raw json.RawMessage) ([]segments.Moment, error) {
	var moments []segments.Moment
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		err := json.Unmarshal(raw, &moments)
		return moments, err
	}
	var wrapped struct {
		Moments []segments.Moment `json:"moments"`
	}
	err := json.Unmarshal(raw, &wrapped)
	return wrapped.Moments, err
}
