// Package scale maps data values to pixel positions.
//
// A scale is a pure function from a domain (numbers, dates or categories) to
// a range (pixels, radii, colours). Charts construct their scales once with a
// fixed pixel range when the scaffold is built and recompute only the domain
// on every update, so scales are mutable values with chaining setters:
//
//	y := scale.NewLinear().SetRange(height, 0)
//	y.SetDomain(0, maxRevenue)
//	px := y.Map(13000)
//
// # Scale kinds
//
//   - [Continuous]: linear, log, pow and sqrt transforms with Invert, Nice and Ticks
//   - [Time]: a linear scale over instants with calendar-aware ticks
//   - [Band] and [Point]: categorical positions with padding
//   - [Ordinal]: categorical lookup into a cycling range (colour schemes)
//
// Tick selection for continuous scales searches 1-2-5 step levels with
// go-moremath's [scale.TickOptions.FindLevel], so ticks are always "round"
// numbers and never exceed the requested count.
package scale
