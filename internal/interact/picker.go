// Package interact turns pointer input into point selection and dragging.
package interact

import (
	"pointview/internal/cloud"
	"pointview/quarkgl"
)

// NDC maps pixel coordinates on a w×h surface to normalized device coordinates in
// [-1, 1], with +Y up.
func NDC(px, py float64, w, h int) (x, y float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	x = px/float64(w)*2 - 1
	y = -(py/float64(h))*2 + 1
	return x, y
}

// PointSource is the live point set a Picker queries. *cloud.Store implements it.
type PointSource interface {
	Len() int
	At(i int) *cloud.RenderedPoint
}

// Picker finds the rendered point under a ray.
type Picker struct {
	points PointSource
}

// NewPicker returns a picker over the live points of points.
func NewPicker(points PointSource) *Picker {
	return &Picker{points: points}
}

// Pick returns the nearest point whose bounds r intersects.
func (p *Picker) Pick(r quarkgl.Ray) (*cloud.RenderedPoint, quarkgl.Hit, bool) {
	var (
		best    *cloud.RenderedPoint
		bestHit quarkgl.Hit
	)
	n := p.points.Len()
	for i := 0; i < n; i++ {
		pt := p.points.At(i)
		if !pt.Live() {
			continue
		}
		t, ok := r.IntersectAABB(pt.Bounds())
		if !ok {
			continue
		}
		if best == nil || t < bestHit.T {
			best = pt
			bestHit = quarkgl.Hit{MeshID: pt.MeshID(), T: t, Point: r.At(t)}
		}
	}
	return best, bestHit, best != nil
}
