// Package media is the codec capability: cutting, concatenating,
// crossfading, probing, subtitle burn-in, audio extraction and vertical
// reframing, implemented on top of ffmpeg and ffprobe.
//
// Filter graphs are built as values (Graph, Chain, Filter) and rendered to
// ffmpeg's textual syntax only when the argument vector is assembled, so
// graph construction is tested without running the tool. Single-input
// commands are assembled with ffmpeg-go; multi-input commands with a
// filter_complex build their argument vector directly.
package media
