package uirect

import "math"

// sdfEdgeHalfWidth is half the anti-aliasing band in pixels. The smoothstep
// transition runs from -0.5 to +0.5 around the shape boundary, assuming SDF
// distances are measured in the same pixel units as the viewport.
const sdfEdgeHalfWidth = 0.5

// RoundedRectSDF returns the signed distance from a pixel-space point to a
// rounded rectangle with the given center, half-extent, and a single corner
// radius. Negative inside, positive outside, zero on the boundary.
//
// This is the standard rounded-box SDF and the exact math evaluated per
// fragment on the GPU; it is shared by the software renderer and the
// property tests so both paths agree on geometry.
func RoundedRectSDF(px, py, cx, cy, halfW, halfH, radius float64) float64 {
	qx := math.Abs(px-cx) - halfW + radius
	qy := math.Abs(py-cy) - halfH + radius

	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)

	return outside + inside - radius
}

// edgeCoverage converts a signed distance into the AA coverage multiplier:
// 1 well inside, 0 at or beyond half a pixel outside. Fragments with
// coverage <= 0 are discarded outright.
func edgeCoverage(dist float64) float64 {
	return 1 - smoothstep(-sdfEdgeHalfWidth, sdfEdgeHalfWidth, dist)
}

// smoothstep is the Hermite smoothstep over [edge0, edge1].
func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
