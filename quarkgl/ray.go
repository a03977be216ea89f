package quarkgl

import "math"

// AABB is an axis-aligned bounding box. The zero value is empty.
type AABB struct {
	Min, Max Vec3
	valid    bool
}

// Box returns the AABB spanning min and max.
func Box(min, max Vec3) AABB {
	return AABB{Min: min, Max: max, valid: true}
}

// Empty reports whether the box holds no points.
func (b AABB) Empty() bool { return !b.valid }

// Translate returns b moved by d.
func (b AABB) Translate(d Vec3) AABB {
	if !b.valid {
		return b
	}
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d), valid: true}
}

// Center returns the box midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// ComputeBounds returns the AABB of all vertex positions.
func ComputeBounds(vs []Vertex) AABB {
	if len(vs) == 0 {
		return AABB{}
	}
	b := Box(vs[0].Pos, vs[0].Pos)
	for _, v := range vs[1:] {
		b.Min = V3(math.Min(b.Min.X, v.Pos.X), math.Min(b.Min.Y, v.Pos.Y), math.Min(b.Min.Z, v.Pos.Z))
		b.Max = V3(math.Max(b.Max.X, v.Pos.X), math.Max(b.Max.Y, v.Pos.Y), math.Max(b.Max.Z, v.Pos.Z))
	}
	return b
}

// Ray is a half-line starting at Origin.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t Scalar) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Hit is a ray intersection.
type Hit struct {
	MeshID int
	T      Scalar
	Point  Vec3
}

// IntersectAABB returns the smallest non-negative t at which r enters (or, when the
// origin is inside, leaves) b.
func (r Ray) IntersectAABB(b AABB) (Scalar, bool) {
	if b.Empty() {
		return 0, false
	}
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	slab := func(o, d, lo, hi Scalar) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !slab(r.Origin.X, r.Dir.X, b.Min.X, b.Max.X) ||
		!slab(r.Origin.Y, r.Dir.Y, b.Min.Y, b.Max.Y) ||
		!slab(r.Origin.Z, r.Dir.Z, b.Min.Z, b.Max.Z) {
		return 0, false
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin >= 0 {
		return tmin, true
	}
	return tmax, true
}

// Ray returns the world-space ray through normalized device coordinates
// (ndcX, ndcY), both in [-1, 1] with +Y up.
func (c Camera) Ray(ndcX, ndcY, aspect Scalar) Ray {
	inv, ok := Mat4Inverse(Mat4Mul(c.Projection(aspect), c.View()))
	if !ok {
		return Ray{Origin: c.Position, Dir: Normalize(c.Target.Sub(c.Position))}
	}
	near := Mat4MulPoint(inv, V3(ndcX, ndcY, -1))
	far := Mat4MulPoint(inv, V3(ndcX, ndcY, 1))
	if c.Type == CameraOrtho {
		return Ray{Origin: near, Dir: Normalize(far.Sub(near))}
	}
	return Ray{Origin: c.Position, Dir: Normalize(far.Sub(c.Position))}
}

// Project maps a world-space point to pixel coordinates on a w×h target. ok is false
// when the point is behind the camera.
func (c Camera) Project(p Vec3, w, h int) (x, y Scalar, ok bool) {
	aspect := Scalar(1)
	if h != 0 {
		aspect = Scalar(w) / Scalar(h)
	}
	clip := Mat4MulV4(Mat4Mul(c.Projection(aspect), c.View()), Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
	if clip.W <= 0 {
		return 0, 0, false
	}
	nx := clip.X / clip.W
	ny := clip.Y / clip.W
	x = (nx*0.5 + 0.5) * Scalar(w-1)
	y = (1 - (ny*0.5 + 0.5)) * Scalar(h-1)
	return x, y, true
}
