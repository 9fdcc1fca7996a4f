// Package dot draws harness graphs with Graphviz.
//
// [ToDOT] turns a [graph.Graph] into an undirected DOT document laid out
// left to right. Connectors become tables with one row per pin and a port
// on either side of it; cables become tables with one colored bar per
// wire. Edges run from a pin port to a wire port and are drawn in the
// wire's colors between two black outline strands.
//
// Port names are derived from 1-based indices:
//
//	p<index>l, p<index>r   connector pin, left and right side
//	w<index>               cable wire
//	ws                     cable shield
//
// # Rendering
//
// [RenderSVG] runs the embedded Graphviz library. PNG and PDF output is
// converted from the SVG by the parent render package:
//
//	src := dot.ToDOT(g, dot.Options{FontName: "arial"})
//	svg, err := dot.RenderSVG(ctx, src)
//	png, err := render.ToPNG(ctx, svg, 2)
package dot
