// Package render turns harness graphs into images.
//
// The [dot] subpackage serializes a graph to Graphviz DOT and renders it
// to SVG in-process. This package converts SVG to PDF or PNG with the
// external rsvg-convert tool (from librsvg):
//
//	svg, err := dot.RenderSVG(ctx, src)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [dot]: github.com/matzehuels/harnessviz/pkg/render/dot
package render
