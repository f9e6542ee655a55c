// Package render draws laid-out graphs onto a [Surface] and resolves screen
// points back to nodes and links.
//
// # Coordinate Contract
//
// Nodes carry canvas-space coordinates from the layout package. [Renderer]
// maps them to screen space with [viewport.Transform.ToScreen] and
// [HitTester] maps screen points back with [viewport.Transform.ToCanvas], so
// a tap always resolves to what was drawn under it.
//
// # Drawing
//
// Each frame clears the surface, then draws links (dash by confidence style,
// width and alpha by strength, arrowhead unless bidirectional) and then
// nodes (radius by size, radial gradient fill, border, initial, and a name
// label at high zoom or for the focal node). A failure while drawing one item
// is logged and counted; the rest of the frame is still drawn.
//
// # Surfaces
//
// A Surface is any 2D drawing target working in screen pixels. The sink
// subpackage provides PNG, SVG and terminal implementations. Surfaces are
// obtained through a [Provider]; [Acquire] retries a provider that is not
// ready yet with doubling delays before giving up with
// errors.ErrCodeSurfaceUnavailable.
package render
