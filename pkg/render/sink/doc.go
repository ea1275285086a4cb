// Package sink serializes rendered charts into output formats.
//
// # Overview
//
// A "sink" turns a chart's scene tree, or one of the chart's optional
// views of its data, into bytes. This package provides:
//
//   - SVG: the scene tree written with svgo, optionally animated
//   - PNG: a raster plot of the chart's series drawn by go-chart
//   - DOT: the node-link structure of hierarchy and network charts
//   - JSON: the scene tree as a nested document
//
// # SVG Output
//
// [SVG] writes the tree as it currently stands. Batch renders normally
// flush the scheduler first so every shape sits at its final position:
//
//	c.Scheduler().Flush()
//	err := sink.SVG(w, c.Root())
//
// With [WithAnimation] the pending tweens of a scheduler are exported as
// SMIL <animate> elements instead, so the file replays the transition when
// opened in a browser. Pending removals become a <set> that hides the
// element once its exit transition ends.
//
// # PNG Output
//
// [PNG] only serves charts implementing chart.Tabular. A single labelled
// series becomes a bar chart, anything else a line or point plot with a
// time axis when the series carry dates. Other charts fail with
// errors.ErrCodeUnsupported.
//
// # DOT Output
//
// [ToDOT] converts a chart.Graph to Graphviz DOT, and [RenderDOT] lays it
// out with the embedded Graphviz and returns SVG.
//
// # Dispatch
//
// [Render] picks the sink for a [Format] and returns the encoded bytes;
// the CLI and the HTTP server both go through it.
package sink
