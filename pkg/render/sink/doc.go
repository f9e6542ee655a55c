// Package sink provides concrete drawing surfaces for [render.Renderer].
//
// # Overview
//
// A "sink" implements [render.Surface] for one output medium:
//
//   - [Raster]: anti-aliased bitmap backed by gg, encoded as PNG
//   - [SVG]: vector document written with svgo
//   - [Cells]: character grid for terminals, styled with lipgloss
//
// All sinks take coordinates in logical pixels. Raster multiplies them by its
// device pixel ratio; Cells maps them onto character cells of
// [CellWidth] x [CellHeight] logical pixels.
//
// # Usage
//
//	r := sink.NewRaster(800, 600, 2)
//	render.NewRenderer(render.DefaultStyle(), logger).Render(r, nodes, links, t)
//	err := r.EncodePNG(w)
package sink
