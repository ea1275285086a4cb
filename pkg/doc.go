// Package pkg provides the core libraries of vizlab, a toolkit for
// interactive data charts rendered to SVG.
//
// # Overview
//
// vizlab builds charts in the style of D3: a retained scene graph whose
// elements are bound to data by key, moved by timed transitions and driven
// by a view state that interaction messages update. The pkg directory is
// organized into four areas:
//
//  1. Scene and data primitives: [scene], [join], [transition], [scale],
//     [axis], [shape], [hierarchy], [force], [dataset], [format]
//  2. Interaction: [view], [interact], [tooltip]
//  3. Charts and output: [chart], [render/sink], [pipeline]
//  4. Infrastructure: [config], [cache], [store], [session], [server],
//     [schedule], [httputil], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	CSV / JSON sources (files or URLs)
//	         ↓
//	    [dataset] (typed tables, groups, lookups)
//	         ↓
//	    [chart] (scene graph built by keyed joins)
//	         ↓
//	    [view] messages → [interact] controller → chart.Update
//	         ↓
//	    [render/sink] (SVG, animated SVG, PNG, DOT, JSON)
//
// # Quick Start
//
// Build a chart and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/vizlab/pkg/chart"
//	    "github.com/matzehuels/vizlab/pkg/render/sink"
//	)
//
//	cfg := chart.Config{Name: "revenue", Kind: chart.Bar,
//	    Sources: map[string]string{"data": "revenues.csv"}}
//	c, _ := chart.Open(ctx, nil, cfg)
//	svg, _ := sink.Render(ctx, c, sink.FormatSVG, sink.Options{})
//
// Drive it with interaction messages:
//
//	ctrl, _ := interact.New(c, c.Defaults())
//	ctrl.Dispatch(view.Select{Control: "metric", Value: "profit"})
//
// # Main Packages
//
// [scene] - Retained element tree with attributes, styles and text, plus
// selections over it.
//
// [join] - Keyed data join splitting bound data into enter, update and exit.
//
// [transition] - Timed attribute interpolation scheduled per element; the
// last transition written to an attribute wins.
//
// [chart] - The thirteen chart kinds and their registry.
//
// [render/sink] - Output formats. Animated SVG exports pending transitions
// as SMIL.
//
// [pipeline] - Load, build and render with the render cache.
//
// [server] - HTTP surface for gallery charts, sessions and snapshots.
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/scene
// [join]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/join
// [transition]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/transition
// [scale]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/scale
// [axis]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/axis
// [shape]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/shape
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/hierarchy
// [force]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/force
// [dataset]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/dataset
// [format]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/format
// [view]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/view
// [interact]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/interact
// [tooltip]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/tooltip
// [chart]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/chart
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/server
// [schedule]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/schedule
// [httputil]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/vizlab/pkg/buildinfo
package pkg
