// Package layout places the nodes of a built graph in canvas space.
//
// Three strategies implement [Strategy]:
//
//   - [Force]: deterministic force-directed simulation (the default)
//   - [Circle]: rings by BFS level around the focal node, no simulation
//   - [Graphviz]: Graphviz neato/fdp via go-graphviz
//
// [Engine] selects a strategy by [Options].Type and falls back to [Circle]
// whenever the selected strategy fails, panics or produces non-finite
// coordinates. A fallback is logged, never returned as an error.
//
// All strategies return copies of the input nodes with X, Y and Placed set;
// the input slice is never modified. Coordinates are untransformed canvas
// space; the viewport transform is applied later by the renderer and hit
// tester.
package layout
