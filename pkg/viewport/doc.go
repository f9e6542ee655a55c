// Package viewport maintains the view transform of the graph canvas and
// interprets touch and pointer input.
//
// The [Transform] is the single coordinate contract between drawing and hit
// testing: screen = canvas·scale + translate. A [Controller] owns one
// transform plus one [GestureState] and updates them from TouchStart,
// TouchMove and TouchEnd events:
//
//   - single-touch moves pan, after an initial jitter threshold, within a
//     bound proportional to the canvas size
//   - two-touch moves pinch-zoom; the raw distance ratio is damped and the
//     per-update multiplier banded, then the scale clamped
//   - a short single touch that never moved resolves as a [Tap]
//
// Changing the number of touches mid-gesture resets pinch tracking instead
// of continuing with stale distances.
package viewport
