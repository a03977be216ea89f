package quarkgl

import "testing"

func TestSceneReusesFreedIDs(t *testing.T) {
	s := CreateScene(2)
	geo := BoxGeometry(0.1)
	a := s.AddMesh(Mesh{Geometry: geo})
	b := s.AddMesh(Mesh{Geometry: geo})
	c := s.AddMesh(Mesh{Geometry: geo})
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("ids = %d,%d,%d, want 0,1,2", a, b, c)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	s.RemoveMesh(b)
	s.RemoveMesh(b)
	if s.Len() != 2 {
		t.Fatalf("Len after remove = %d, want 2", s.Len())
	}
	if _, ok := s.Mesh(b); ok {
		t.Fatalf("removed mesh still visible")
	}
	if got := s.AddMesh(Mesh{Geometry: geo}); got != b {
		t.Fatalf("AddMesh reused id %d, want %d", got, b)
	}
}

func TestSceneAddMeshDefaults(t *testing.T) {
	s := CreateScene(0)
	id := s.AddMesh(Mesh{Geometry: Geometry{Vertices: []Vertex{{Pos: V3(1, 2, 3)}}}})
	m, ok := s.Mesh(id)
	if !ok {
		t.Fatalf("mesh %d missing", id)
	}
	if !m.Enabled || m.Transform != Mat4Identity() || m.Material.Opacity != 0xFF {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if m.Bounds.Empty() {
		t.Fatalf("bounds not computed")
	}
}

func TestSceneRaycastNearest(t *testing.T) {
	s := CreateScene(0)
	geo := BoxGeometry(1)
	far := s.AddMesh(Mesh{Geometry: geo, Pickable: true, Transform: Mat4Translate(V3(0, 0, -3))})
	nearID := s.AddMesh(Mesh{Geometry: geo, Pickable: true, Transform: Mat4Translate(V3(0, 0, 0))})
	s.AddMesh(Mesh{Geometry: geo, Transform: Mat4Translate(V3(0, 0, 2))}) // not pickable

	r := Ray{Origin: V3(0, 0, 5), Dir: V3(0, 0, -1)}
	hit, ok := s.Raycast(r)
	if !ok {
		t.Fatalf("Raycast ok = false")
	}
	if hit.MeshID != nearID {
		t.Fatalf("hit mesh %d, want %d", hit.MeshID, nearID)
	}
	if !nearV(hit.Point, V3(0, 0, 0.5)) {
		t.Fatalf("hit point = %+v, want {0 0 0.5}", hit.Point)
	}

	s.RemoveMesh(nearID)
	hit, ok = s.Raycast(r)
	if !ok || hit.MeshID != far {
		t.Fatalf("removed mesh still hit: %+v", hit)
	}
}

func TestSceneRaycastIgnoresSurfaceAtOrigin(t *testing.T) {
	s := CreateScene(0)
	grid := s.AddMesh(Mesh{Pickable: true, Geometry: GridGeometry(10, 10, RGB(0, 255, 0), RGB(255, 255, 255))})
	box := s.AddMesh(Mesh{Pickable: true, Geometry: BoxGeometry(1)})

	// Eye on the grid plane, looking slightly up: the grid must not win at t=0.
	hit, ok := s.Raycast(Ray{Origin: V3(0, 0, 5), Dir: Normalize(V3(0, 1e-12, -1))})
	if !ok || hit.MeshID != box {
		t.Fatalf("hit = %+v ok=%v, want box %d", hit, ok, box)
	}

	// From above, the grid is a real surface.
	hit, ok = s.Raycast(Ray{Origin: V3(3, 2, 3), Dir: V3(0, -1, 0)})
	if !ok || hit.MeshID != grid || !nearV(hit.Point, V3(3, 0, 3)) {
		t.Fatalf("hit = %+v ok=%v, want grid at (3,0,3)", hit, ok)
	}
}
