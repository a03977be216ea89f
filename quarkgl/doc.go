// Package quarkgl is a small, predictable software 3D engine for the point viewer.
//
// It covers what an interactive point-cloud view needs: a camera with orbit/zoom/pan,
// a scene of meshes that can be added and removed every frame, ray casting for
// picking, and a fixed raster pipeline. It does not provide a GPU abstraction.
//
// Pipeline (fixed):
//
//	Scene → Transform → Projection → Clipping → Rasterization → Frame output.
//
// The renderer draws into a caller-provided Target and avoids allocations in the
// render hot path. All math is float64.
package quarkgl
