// Package cloud holds the rendered point set and keeps it in step with the inbound
// point stream.
package cloud

import (
	"github.com/golang/geo/r3"

	"pointview/quarkgl"
)

// Point3D is one entry of an inbound batch: its position in the batch and its
// stream-space coordinates (x and y roughly in [0,1], z unbounded).
type Point3D struct {
	Index int
	r3.Vector
}

// P is shorthand for building a Point3D.
func P(index int, x, y, z float64) Point3D {
	return Point3D{Index: index, Vector: r3.Vector{X: x, Y: y, Z: z}}
}

// ToScene maps stream-space coordinates onto the scene:
// (x, y, z) -> ((x-0.5)*10, -(y-0.5)*10, -z*5).
func ToScene(v r3.Vector) quarkgl.Vec3 {
	return quarkgl.V3((v.X-0.5)*10, -(v.Y-0.5)*10, -v.Z*5)
}

// Shape is the geometry and material every rendered point shares.
type Shape struct {
	Geometry quarkgl.Geometry
	Material quarkgl.Material
}

// PointSize is the edge length of the cube drawn for each point.
const PointSize = 0.1

// DefaultShape returns the green cube used for stream points.
func DefaultShape() *Shape {
	return &Shape{
		Geometry: quarkgl.BoxGeometry(PointSize),
		Material: quarkgl.Material{BaseColor: quarkgl.Hex(0x00FF00), Unlit: true},
	}
}

// RenderedPoint is one visible point. It is owned by a Store.
type RenderedPoint struct {
	index    int
	pos      quarkgl.Vec3
	meshID   int
	shape    *Shape
	detached bool
}

// Index returns the point's position in the latest batch.
func (p *RenderedPoint) Index() int { return p.index }

// Position returns the scene-space position.
func (p *RenderedPoint) Position() quarkgl.Vec3 { return p.pos }

// MeshID returns the scene mesh drawing this point, or -1 once detached.
func (p *RenderedPoint) MeshID() int {
	if p.detached {
		return -1
	}
	return p.meshID
}

// Shape returns the shared shape.
func (p *RenderedPoint) Shape() *Shape { return p.shape }

// Live reports whether the point is still part of its store.
func (p *RenderedPoint) Live() bool { return p != nil && !p.detached }

// Bounds returns the point's world-space bounding box.
func (p *RenderedPoint) Bounds() quarkgl.AABB {
	return p.shape.Geometry.Bounds.Translate(p.pos)
}
