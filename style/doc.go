// Package style resolves caption styling into per-group render specs.
//
// A Config holds the user-facing options (font, colours, position,
// animation). Normalize clamps every numeric option into its documented
// range and replaces unknown enum values, so resolution never fails.
//
// The Resolver fits each group's text to the canvas width. Text is measured
// with real font metrics when a Measurer can find the family; otherwise a
// conservative width heuristic is used and the resulting RenderSpec is
// marked MetricsApproximate.
package style
