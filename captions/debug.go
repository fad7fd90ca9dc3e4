package captions

import (
	"github.com/kbukum/clipkit/transcript"
)

// Settings echoes the grouping parameters in debug output.
type Settings struct {
	WordsPerGroup    int      `json:"words_per_group"`
	SilenceThreshold *float64 `json:"silence_threshold"`
}

// GroupInfo is the per-group part of DebugInfo.
type GroupInfo struct {
	Text      string            `json:"text"`
	WordCount int               `json:"word_count"`
	Start     float64           `json:"start"`
	End       float64           `json:"end"`
	Duration  float64           `json:"duration"`
	Words     []transcript.Word `json:"words"`
}

// GroupGap is the pause between two consecutive groups.
type GroupGap struct {
	AfterGroup     int     `json:"after_group"`
	GapSeconds     float64 `json:"gap_seconds"`
	IsSilenceBreak bool    `json:"is_silence_break"`
}

// DebugInfo is the caption debug metadata returned with a captioned video.
type DebugInfo struct {
	Settings           Settings          `json:"settings"`
	Words              []transcript.Word `json:"words"`
	Groups             []GroupInfo       `json:"groups"`
	Gaps               []GroupGap        `json:"gaps"`
	Stats              GapStats          `json:"stats"`
	MetricsApproximate bool              `json:"metrics_approximate,omitempty"`
}

// Debug describes how words were grouped. A gap is flagged as a silence
// break when it exceeds the configured threshold.
func Debug(words []transcript.Word, groups []Group, s Settings) DebugInfo {
	info := DebugInfo{
		Settings: s,
		Words:    words,
		Groups:   make([]GroupInfo, len(groups)),
		Gaps:     []GroupGap{},
		Stats:    AnalyzeGaps(words),
	}
	for i, g := range groups {
		info.Groups[i] = GroupInfo{
			Text:      g.Text,
			WordCount: len(g.Words),
			Start:     g.Start,
			End:       g.End,
			Duration:  round3(g.Duration()),
			Words:     g.Plain(),
		}
		if i+1 < len(groups) {
			gap := groups[i+1].Start - g.End
			info.Gaps = append(info.Gaps, GroupGap{
				AfterGroup:     i,
				GapSeconds:     round3(gap),
				IsSilenceBreak: s.SilenceThreshold != nil && gap > *s.SilenceThreshold,
			})
		}
	}
	return info
}
