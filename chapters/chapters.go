package chapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/llm"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/transcript"
)

// Chapter count bounds asked of the model.
const (
	DefaultMinChapters = 15
	DefaultMaxChapters = 20
	MaxChapters        = 50
)

// Query describes one chapter request.
type Query struct {
	// Transcript is the timestamped text the model reads, e.g. "[MM:SS] text" lines.
	Transcript string
	// Guidance replaces the default title style instructions.
	Guidance string
	Min      int
	Max      int
	// Duration drops chapters starting at or after it. Zero keeps all.
	Duration float64
}

func (q Query) normalized() Query {
	if q.Max <= 0 {
		q.Max = DefaultMaxChapters
	}
	q.Max = min(q.Max, MaxChapters)
	if q.Min <= 0 {
		q.Min = min(DefaultMinChapters, q.Max)
	}
	q.Min = min(q.Min, q.Max)
	return q
}

// Chapter is one entry of the chapter list.
type Chapter struct {
	Start     float64 `json:"start"`
	Timestamp string  `json:"timestamp"`
	Title     string  `json:"title"`
}

type wireChapter struct {
	Start string `json:"start_time" jsonschema:"description=Start timestamp as MM:SS or HH:MM:SS"`
	Title string `json:"title" jsonschema:"description=Descriptive chapter title"`
}

var schema = llm.SchemaFor[struct {
	Chapters []wireChapter `json:"chapters"`
}]("video_chapters", "Chapters covering the whole video")

// Generator produces chapter lists with a language model.
type Generator struct {
	provider llm.Provider
	log      *logger.Logger
}

// NewGenerator creates a Generator on p.
func NewGenerator(p llm.Provider) *Generator {
	return &Generator{provider: p, log: logger.WithComponent("chapters")}
}

// Generate returns the chapters for q sorted by start. Entries with an
// unreadable timestamp or a repeated start are dropped and the first
// chapter always starts at 00:00.
func (g *Generator) Generate(ctx context.Context, q Query) ([]Chapter, error) {
	if strings.TrimSpace(q.Transcript) == "" {
		return nil, errors.InvalidInput("transcript", "transcript is empty")
	}
	q = q.normalized()

	var raw json.RawMessage
	req := llm.Request{Messages: []llm.Message{llm.UserMessage(prompt(q))}, Schema: schema}
	if err := llm.CompleteJSON(ctx, g.provider, req, &raw); err != nil {
		return nil, err
	}
	wire, err := decode(raw)
	if err != nil {
		return nil, errors.Parse(g.provider.Name(), string(raw), err)
	}

	chapters, dropped := clean(wire, q.Duration)
	if dropped > 0 {
		g.log.WithContext(ctx).Warn("dropped chapters", logger.Fields("dropped", dropped, "kept", len(chapters)))
	}
	if len(chapters) == 0 {
		return nil, errors.Parse(g.provider.Name(), string(raw), fmt.Errorf("no usable chapters in response"))
	}
	g.log.WithContext(ctx).Info("chapters generated", logger.Fields("count", len(chapters)))
	return chapters, nil
}

// decode accepts either a bare array or an object with a "chapters" array.
func decode(raw json.RawMessage) ([]wireChapter, error) {
	var list []wireChapter
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		err := json.Unmarshal(raw, &list)
		return list, err
	}
	var wrapped struct {
		Chapters []wireChapter `json:"chapters"`
	}
	err := json.Unmarshal(raw, &wrapped)
	return wrapped.Chapters, err
}

func clean(raw []wireChapter, duration float64) ([]Chapter, int) {
	var out []Chapter
	dropped := 0
	for _, c := range raw {
		start, err := transcript.ParseTimestamp(strings.TrimSpace(c.Start))
		title := strings.TrimSpace(c.Title)
		if err != nil || title == "" || (duration > 0 && start >= duration) {
			dropped++
			continue
		}
		out = append(out, Chapter{Start: start, Title: title})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	kept := out[:0]
	for _, c := range out {
		if len(kept) > 0 && int(c.Start) == int(kept[len(kept)-1].Start) {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) > 0 {
		kept[0].Start = 0
	}
	for i := range kept {
		kept[i].Timestamp = transcript.FormatTimestamp(kept[i].Start)
	}
	return kept, dropped
}

// Description renders chapters one per line as "MM:SS - Title".
func Description(chapters []Chapter) string {
	var b strings.Builder
	for _, c := range chapters {
		ts := c.Timestamp
		if ts == "" {
			ts = transcript.FormatTimestamp(c.Start)
		}
		fmt.Fprintf(&b, "%s - %s\n", ts, c.Title)
	}
	return b.String()
}

const defaultGuidance = `Write clear, descriptive chapter titles that say what actually happens in each section.
Name the topics, questions or activities covered instead of generic labels like "Introduction" or "Conclusion".
Keep titles natural, not clickbait.
Where it fits, mention the products, tools, techniques or topic keywords discussed so the chapters are searchable.`

func prompt(q Query) string {
	guidance := strings.TrimSpace(q.Guidance)
	if guidance == "" {
		guidance = defaultGuidance
	}
	var b strings.Builder
	b.WriteString("Generate chapters for this video transcript.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Output between %d and %d chapters. Combine related sections to stay within the limit.\n", q.Min, q.Max)
	b.WriteString("- Cover the whole video from start to finish.\n")
	b.WriteString("- Group similar activities together instead of one chapter per small event.\n")
	b.WriteString("- Use timestamps that appear in the transcript, as MM:SS or HH:MM:SS for videos over an hour.\n")
	b.WriteString("- The first chapter starts at 00:00.\n\n")
	b.WriteString("Style guidance:\n" + guidance + "\n\n")
	b.WriteString("Transcript:\n" + q.Transcript + "\n\n")
	b.WriteString(`Respond with a JSON object {"chapters": [...]} where each chapter has start_time and title.`)
	return b.String()
}
