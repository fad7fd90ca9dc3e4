package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/segments"
	"github.com/kbukum/clipkit/studio"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcript"
)

// derived names an output next to input, e.g. talk.mp4 -> talk_captioned.mp4.
func derived(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_" + suffix + ext
}

// regionFlags adds --start and --end and returns the parsed region, if any.
func regionFlags(cmd *cobra.Command) func() (*studio.Region, error) {
	var start, end string
	cmd.Flags().StringVar(&start, "start", "", "region start as SS, MM:SS or HH:MM:SS")
	cmd.Flags().StringVar(&end, "end", "", "region end as SS, MM:SS or HH:MM:SS")
	return func() (*studio.Region, error) {
		switch {
		case start == "" && end == "":
			return nil, nil
		case start == "" || end == "":
			return nil, errors.InvalidInput("region", "--start and --end must be given together")
		}
		return &studio.Region{Start: start, End: end}, nil
	}
}

// styleOverride reads a JSON style file over the configured style.
func (a *app) styleOverride(path string) (*style.Config, error) {
	if path == "" {
		return nil, nil
	}
	st := a.cfg.Captions.Style
	if err := readJSON(path, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.InvalidInput("transcript", err.Error())
	}
	return string(data), nil
}

func readMoments(path string) ([]segments.Moment, error) {
	if path == "" {
		return nil, nil
	}
	var ms []segments.Moment
	if err := readJSON(path, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (a *app) captionsCmd() *cobra.Command {
	var (
		req       studio.CaptionRequest
		threshold float64
		styleFile string
	)
	cmd := &cobra.Command{
		Use:   "captions <input>",
		Short: "Burn word-highlighted captions into a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = args[0]
			if req.Output == "" {
				req.Output = derived(req.Input, "captioned")
			}
			if cmd.Flags().Changed("silence-threshold") {
				req.SilenceThreshold = &threshold
			}
			st, err := a.styleOverride(styleFile)
			if err != nil {
				return err
			}
			req.Style = st
			res, err := a.studio.Captions(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Output, "output", "o", "", "output path (default: <input>_captioned.<ext>)")
	f.IntVar(&req.WordsPerGroup, "words-per-group", 0, "words per caption (default from config)")
	f.Float64Var(&threshold, "silence-threshold", 0, "pause in seconds that starts a new caption, negative to group by size only")
	f.StringVar(&styleFile, "style", "", "JSON file with caption style overrides")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	return cmd
}

func (a *app) silenceCmd() *cobra.Command {
	var req studio.SilenceRequest
	cmd := &cobra.Command{
		Use:   "silence <input>",
		Short: "Cut the pauses between words",
		Args:  cobra.ExactArgs(1),
	}
	region := regionFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req.Input = args[0]
		if req.Output == "" {
			req.Output = derived(req.Input, "tight")
		}
		r, err := region()
		if err != nil {
			return err
		}
		req.Region = r
		res, err := a.studio.RemoveSilence(cmd.Context(), req)
		if err != nil {
			return err
		}
		return a.print(cmd, res)
	}
	f := cmd.Flags()
	f.StringVarP(&req.Output, "output", "o", "", "output path (default: <input>_tight.<ext>)")
	f.Float64Var(&req.MinGap, "min-gap", 0, "shortest pause in seconds that is cut (default from config)")
	f.Float64Var(&req.Padding, "padding", 0, "seconds kept around speech (default from config)")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	return cmd
}

func (a *app) gapsCmd() *cobra.Command {
	var req studio.GapRequest
	cmd := &cobra.Command{
		Use:   "gaps <input>",
		Short: "Report the pauses between words without writing video",
		Args:  cobra.ExactArgs(1),
	}
	region := regionFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req.Input = args[0]
		r, err := region()
		if err != nil {
			return err
		}
		req.Region = r
		res, err := a.studio.AnalyzeGaps(cmd.Context(), req)
		if err != nil {
			return err
		}
		return a.print(cmd, res)
	}
	f := cmd.Flags()
	f.Float64Var(&req.MinGap, "min-gap", 0, "shortest pause in seconds to report (default from config)")
	f.BoolVar(&req.Relative, "relative", false, "report times from the region start")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	return cmd
}

func (a *app) compileCmd() *cobra.Command {
	var (
		req            studio.CompileRequest
		crossfade      bool
		momentsFile    string
		transcriptFile string
	)
	cmd := &cobra.Command{
		Use:   "compile <input>",
		Short: "Join the best moments into one compilation",
		Long: `compile cuts moments from the input in order and joins them. Moments come
from --moments, or are picked by the language model from --transcript or
from a fresh transcription of the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = args[0]
			if req.Output == "" {
				req.Output = derived(req.Input, "bestof")
			}
			if cmd.Flags().Changed("crossfade") {
				req.Crossfade = &crossfade
			}
			var err error
			if req.Moments, err = readMoments(momentsFile); err != nil {
				return err
			}
			if req.Transcript, err = readText(transcriptFile); err != nil {
				return err
			}
			res, err := a.studio.Compile(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Output, "output", "o", "", "output path (default: <input>_bestof.<ext>)")
	f.StringVar(&momentsFile, "moments", "", "JSON file with the moments to use")
	f.StringVar(&transcriptFile, "transcript", "", `file with "[MM:SS] text" lines to pick moments from`)
	f.StringVar(&req.VideoURL, "video-url", "", "YouTube URL of the source, reported in the result")
	f.IntVarP(&req.Count, "count", "n", 0, "number of moments to pick (default from config)")
	f.StringVar(&req.Guidance, "guidance", "", "extra instructions for picking moments")
	f.BoolVar(&crossfade, "crossfade", false, "crossfade between clips (default from config)")
	f.Float64Var(&req.CrossfadeDuration, "crossfade-duration", 0, "crossfade length in seconds")
	f.IntVar(&req.TargetMinutes, "target-minutes", 0, "target compilation length")
	f.IntVar(&req.AvgClipSeconds, "avg-clip-seconds", 0, "typical clip length")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	return cmd
}

func (a *app) shortsCmd() *cobra.Command {
	var (
		req            studio.ShortsRequest
		captions       bool
		layoutFile     string
		momentsFile    string
		transcriptFile string
		styleFile      string
	)
	cmd := &cobra.Command{
		Use:   "shorts <input>",
		Short: "Cut vertical shorts with two stacked regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = args[0]
			if req.OutputDir == "" {
				req.OutputDir = strings.TrimSuffix(req.Input, filepath.Ext(req.Input)) + "_shorts"
			}
			if cmd.Flags().Changed("captions") {
				req.Captions = &captions
			}
			var layout media.Layout
			if err := readJSON(layoutFile, &layout); err != nil {
				return err
			}
			req.Layout = layout
			var err error
			if req.Moments, err = readMoments(momentsFile); err != nil {
				return err
			}
			if req.Transcript, err = readText(transcriptFile); err != nil {
				return err
			}
			if req.Style, err = a.styleOverride(styleFile); err != nil {
				return err
			}
			res, err := a.studio.Shorts(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.OutputDir, "output-dir", "o", "", "directory for short_NN.mp4 files (default: <input>_shorts)")
	f.StringVar(&layoutFile, "layout", "", "JSON file with the two regions and split")
	f.StringVar(&momentsFile, "moments", "", "JSON file with the moments to use")
	f.StringVar(&transcriptFile, "transcript", "", `file with "[MM:SS] text" lines to pick moments from`)
	f.IntVarP(&req.Count, "count", "n", 0, "number of shorts (default from config)")
	f.StringVar(&req.Guidance, "guidance", "", "extra instructions for picking moments")
	f.BoolVar(&req.Curator, "curator", false, "pick moments with the curator prompt")
	f.IntVar(&req.MaxClipSeconds, "max-clip-seconds", 0, "longest short in seconds")
	f.BoolVar(&captions, "captions", false, "caption each short (default from config)")
	f.StringVar(&styleFile, "style", "", "JSON file with caption style overrides")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

// parseRange parses "START-END" where both ends are timestamps.
func parseRange(s string) (segments.Segment, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return segments.Segment{}, errors.InvalidInput("cut", fmt.Sprintf("%q is not START-END", s))
	}
	start, err := transcript.ParseTimestamp(from)
	if err != nil {
		return segments.Segment{}, errors.InvalidInput("cut", err.Error())
	}
	end, err := transcript.ParseTimestamp(to)
	if err != nil {
		return segments.Segment{}, errors.InvalidInput("cut", err.Error())
	}
	if end <= start {
		return segments.Segment{}, errors.InvalidInput("cut", fmt.Sprintf("%q ends before it starts", s))
	}
	return segments.Segment{Start: start, End: end}, nil
}

func (a *app) exportCmd() *cobra.Command {
	var (
		req  studio.CutsRequest
		cuts []string
	)
	cmd := &cobra.Command{
		Use:     "export <input>",
		Short:   "Export the input with ranges removed",
		Example: "  clipkit export talk.mp4 --cut 0:10-0:25 --cut 1:02-1:04.5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = args[0]
			if req.Output == "" {
				req.Output = derived(req.Input, "edited")
			}
			for _, c := range cuts {
				sg, err := parseRange(c)
				if err != nil {
					return err
				}
				req.Removals = append(req.Removals, sg)
			}
			res, err := a.studio.ExportWithoutCuts(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "output path (default: <input>_edited.<ext>)")
	cmd.Flags().StringArrayVar(&cuts, "cut", nil, "range to remove as START-END, repeatable")
	_ = cmd.MarkFlagRequired("cut")
	return cmd
}

func (a *app) sliceCmd() *cobra.Command {
	var (
		req studio.SliceRequest
		at  []string
	)
	cmd := &cobra.Command{
		Use:     "slice <input>",
		Short:   "Split the input into parts at cut points",
		Example: "  clipkit slice talk.mp4 --at 1:30 --at 4:00 -o parts/",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input = args[0]
			if req.OutputDir == "" {
				req.OutputDir = strings.TrimSuffix(req.Input, filepath.Ext(req.Input)) + "_parts"
			}
			for _, ts := range at {
				v, err := transcript.ParseTimestamp(ts)
				if err != nil {
					return errors.InvalidInput("at", err.Error())
				}
				req.Cuts = append(req.Cuts, v)
			}
			res, err := a.studio.SliceAt(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&req.OutputDir, "output-dir", "o", "", "directory for part_NN.mp4 files (default: <input>_parts)")
	cmd.Flags().StringSliceVar(&at, "at", nil, "cut point as a timestamp, repeatable or comma separated")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func (a *app) chaptersCmd() *cobra.Command {
	var (
		req            studio.ChaptersRequest
		transcriptFile string
		asText         bool
	)
	cmd := &cobra.Command{
		Use:   "chapters [input]",
		Short: "Generate a chapter list for a long video",
		Long: `chapters asks the language model for chapters covering the whole video,
reading --transcript or a fresh transcription of the input. With --text
only the "MM:SS - Title" block is printed, ready to paste into a description.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Input = args[0]
			}
			var err error
			if req.Transcript, err = readText(transcriptFile); err != nil {
				return err
			}
			res, err := a.studio.Chapters(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asText {
				_, err = fmt.Fprint(cmd.OutOrStdout(), res.Description)
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&transcriptFile, "transcript", "", `file with "[MM:SS] text" lines`)
	f.StringVar(&req.VideoURL, "video-url", "", "YouTube URL of the source, reported in the result")
	f.StringVar(&req.Guidance, "guidance", "", "title style instructions replacing the defaults")
	f.IntVar(&req.Min, "min", 0, "fewest chapters to ask for (default 15)")
	f.IntVar(&req.Max, "max", 0, "most chapters to ask for (default 20)")
	f.StringVarP(&req.Language, "language", "l", "", "spoken language hint")
	f.BoolVar(&asText, "text", false, "print only the chapter lines")
	return cmd
}

func (a *app) musicCmd() *cobra.Command {
	var (
		req                 studio.MusicRequest
		sourceVol, musicVol float64
	)
	cmd := &cobra.Command{
		Use:   "music <input> <music>",
		Short: "Mix background music under the input's audio",
		Long: `music lays an audio track under the input's soundtrack and copies the
video stream. Volumes are multipliers between 0 and 2; --source-volume 0
replaces the soundtrack with the music.`,
		Example: "  clipkit music talk.mp4 bed.mp3 --music-volume 0.2 --delay 3",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Input, req.Music = args[0], args[1]
			if req.Output == "" {
				req.Output = derived(req.Input, "music")
			}
			if cmd.Flags().Changed("source-volume") {
				req.SourceVolume = &sourceVol
			}
			if cmd.Flags().Changed("music-volume") {
				req.MusicVolume = &musicVol
			}
			res, err := a.studio.AddMusic(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Output, "output", "o", "", "output path (default: <input>_music.<ext>)")
	f.Float64Var(&sourceVol, "source-volume", studio.DefaultSourceVolume, "volume of the input's own audio")
	f.Float64Var(&musicVol, "music-volume", studio.DefaultMusicVolume, "volume of the music")
	f.Float64Var(&req.MusicDelay, "delay", 0, "seconds before the music starts")
	return cmd
}
