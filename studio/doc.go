// Package studio runs the clipkit pipelines end to end.
//
// A Studio owns no per-request state. Every call validates its request,
// resolves the remote backends it needs (failing with CONFIGURATION_ERROR
// before touching the disk when a credential is missing), then works inside
// its own workspace directory that is removed on every exit path.
//
//	s := studio.New(cfg, media.New(cfg.Media.Config))
//	res, err := s.RemoveSilence(ctx, studio.SilenceRequest{Input: "talk.mp4", Output: "tight.mp4"})
//
// Pipelines:
//
//   - Captions: transcribe, group words, fit styles, burn an animated ASS track
//   - RemoveSilence: cut the pauses between words and rejoin the speech
//   - AnalyzeGaps: report pauses without writing video
//   - Compile: cut detected or supplied moments into one best-of video
//   - Shorts: cut moments, reframe them vertically, optionally caption them
//   - ExportWithoutCuts, SliceAt: manual editing over explicit time ranges
//   - Chapters: timestamped chapter list from a transcript or a video
//   - AddMusic: mix a background track under the original audio
//   - Batch: run independent jobs with bounded concurrency
package studio
