package cloud

import "pointview/quarkgl"

// SceneGraph is the part of a scene the store inserts point meshes into.
// *quarkgl.Scene implements it.
type SceneGraph interface {
	AddMesh(m quarkgl.Mesh) int
	RemoveMesh(id int)
	UpdateMeshTransform(id int, m quarkgl.Mat4)
}

// Store is the ordered set of rendered points, keyed by index.
//
// It is not safe for concurrent use; the goroutine that renders owns it.
type Store struct {
	scene  SceneGraph
	shape  *Shape
	points []*RenderedPoint
}

// NewStore returns an empty store drawing points with shape into scene.
func NewStore(scene SceneGraph, shape *Shape) *Store {
	if shape == nil {
		shape = DefaultShape()
	}
	return &Store{scene: scene, shape: shape}
}

// Len returns the number of points.
func (s *Store) Len() int { return len(s.points) }

// At returns the point at index i, or nil when out of range.
func (s *Store) At(i int) *RenderedPoint {
	if i < 0 || i >= len(s.points) {
		return nil
	}
	return s.points[i]
}

// Positions returns a snapshot of every point position in index order.
func (s *Store) Positions() []quarkgl.Vec3 {
	out := make([]quarkgl.Vec3, len(s.points))
	for i, p := range s.points {
		out[i] = p.pos
	}
	return out
}

// SetPosition moves p. It is a no-op for detached points.
func (s *Store) SetPosition(p *RenderedPoint, pos quarkgl.Vec3) bool {
	if !p.Live() {
		return false
	}
	p.pos = pos
	s.scene.UpdateMeshTransform(p.meshID, quarkgl.Mat4Translate(pos))
	return true
}

func (s *Store) push(pos quarkgl.Vec3) *RenderedPoint {
	p := &RenderedPoint{index: len(s.points), pos: pos, shape: s.shape}
	p.meshID = s.scene.AddMesh(quarkgl.Mesh{
		Pickable:  true,
		Geometry:  s.shape.Geometry,
		Material:  s.shape.Material,
		Transform: quarkgl.Mat4Translate(pos),
	})
	s.points = append(s.points, p)
	return p
}

func (s *Store) pop() *RenderedPoint {
	n := len(s.points)
	if n == 0 {
		return nil
	}
	p := s.points[n-1]
	s.points[n-1] = nil
	s.points = s.points[:n-1]
	s.scene.RemoveMesh(p.meshID)
	p.detached = true
	return p
}
