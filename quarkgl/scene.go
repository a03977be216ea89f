package quarkgl

// Material is a minimal surface description.
type Material struct {
	BaseColor Color
	Opacity   uint8 // 0..255. 255 means opaque.

	// Unlit meshes ignore the scene light and draw BaseColor as-is.
	Unlit bool
}

// LightMode defines minimal lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is a minimal light setup.
type Light struct {
	Mode      LightMode
	Ambient   Scalar // 0..1
	Dir       Vec3   // direction *towards* the scene
	DirAmount Scalar // 0..1
}

// CameraType selects camera projection.
type CameraType uint8

const (
	CameraPerspective CameraType = iota
	CameraOrtho
)

// Camera describes the viewing transform.
type Camera struct {
	Type CameraType

	Position Vec3
	Target   Vec3
	Up       Vec3

	// Perspective.
	FOVYRad Scalar

	// Orthographic (half-height).
	OrthoSize Scalar

	Near Scalar
	Far  Scalar
}

// View returns the camera view matrix.
func (c Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

// Projection returns the projection matrix for a target aspect.
func (c Camera) Projection(aspect Scalar) Mat4 {
	switch c.Type {
	case CameraOrtho:
		size := c.OrthoSize
		if size == 0 {
			size = 1
		}
		top := size
		bottom := -size
		right := size * aspect
		left := -right
		return Mat4Ortho(left, right, bottom, top, c.Near, c.Far)
	default:
		fov := c.FOVYRad
		if fov == 0 {
			fov = 1.0
		}
		return Mat4Perspective(fov, aspect, c.Near, c.Far)
	}
}

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	Color  Color
}

// Geometry is vertex data that may be shared by many meshes.
//
// Meshes reference the slices directly; callers must not mutate a Geometry once it
// has been handed to a scene.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16 // triangle list
	Lines    []uint16 // line list
	Bounds   AABB
}

// Mesh is a triangle and/or line mesh with an object transform.
type Mesh struct {
	Enabled  bool
	Pickable bool

	Geometry

	Transform Mat4
	Material  Material
}

// Scene is a collection of objects to render.
type Scene struct {
	Camera Camera
	Light  Light

	meshes []Mesh
	alive  []bool
	free   []int
}

// CreateScene allocates a scene with an initial mesh capacity. The scene grows past
// it when needed.
func CreateScene(capacity int) *Scene {
	if capacity < 0 {
		capacity = 0
	}
	return &Scene{
		Camera: Camera{
			Type:      CameraPerspective,
			Position:  V3(0, 0, 5),
			Target:    V3(0, 0, 0),
			Up:        V3(0, 1, 0),
			FOVYRad:   1.309, // 75 degrees
			Near:      0.1,
			Far:       1000,
			OrthoSize: 1,
		},
		Light: Light{
			Mode:      LightAmbientDirectional,
			Ambient:   0.25,
			Dir:       Normalize(V3(1, 1, 1)),
			DirAmount: 0.75,
		},
		meshes: make([]Mesh, 0, capacity),
		alive:  make([]bool, 0, capacity),
	}
}

// AddMesh adds a mesh to the scene and returns its id.
//
// Ids of removed meshes are reused, most recently freed first.
func (s *Scene) AddMesh(m Mesh) int {
	if s == nil {
		return -1
	}
	if m.Transform == (Mat4{}) {
		m.Transform = Mat4Identity()
	}
	if m.Material.Opacity == 0 {
		m.Material.Opacity = 0xFF
	}
	if m.Material.BaseColor == (Color{}) {
		m.Material.BaseColor = RGB(0xCC, 0xCC, 0xCC)
	}
	if m.Bounds.Empty() && len(m.Vertices) > 0 {
		m.Bounds = ComputeBounds(m.Vertices)
	}
	m.Enabled = true

	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.meshes[id] = m
		s.alive[id] = true
		return id
	}
	s.meshes = append(s.meshes, m)
	s.alive = append(s.alive, true)
	return len(s.meshes) - 1
}

// RemoveMesh removes a mesh by id.
func (s *Scene) RemoveMesh(id int) {
	if s == nil || id < 0 || id >= len(s.meshes) || !s.alive[id] {
		return
	}
	s.alive[id] = false
	s.meshes[id] = Mesh{}
	s.free = append(s.free, id)
}

// UpdateMeshTransform updates a mesh transform by id.
func (s *Scene) UpdateMeshTransform(id int, m Mat4) {
	if s == nil || id < 0 || id >= len(s.meshes) || !s.alive[id] {
		return
	}
	s.meshes[id].Transform = m
}

// Mesh returns a copy of the mesh with the given id.
func (s *Scene) Mesh(id int) (Mesh, bool) {
	if s == nil || id < 0 || id >= len(s.meshes) || !s.alive[id] {
		return Mesh{}, false
	}
	return s.meshes[id], true
}

// Len returns the number of live meshes.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.meshes) - len(s.free)
}

// minHitT ignores hits at the ray origin, so a ray that starts on a flat surface
// does not hit that surface.
const minHitT = 1e-6

// Raycast returns the nearest intersection of r with any enabled, pickable mesh.
func (s *Scene) Raycast(r Ray) (Hit, bool) {
	if s == nil {
		return Hit{}, false
	}
	best := Hit{MeshID: -1}
	found := false
	for id := range s.meshes {
		if !s.alive[id] {
			continue
		}
		m := &s.meshes[id]
		if !m.Enabled || !m.Pickable || m.Bounds.Empty() {
			continue
		}
		t, ok := intersectTransformed(r, m.Transform, m.Bounds)
		if !ok || t < minHitT {
			continue
		}
		if !found || t < best.T {
			best = Hit{MeshID: id, T: t, Point: r.At(t)}
			found = true
		}
	}
	return best, found
}

func (s *Scene) eachMesh(fn func(m *Mesh)) {
	for i := range s.meshes {
		if !s.alive[i] {
			continue
		}
		fn(&s.meshes[i])
	}
}

// intersectTransformed intersects r with box placed by transform. The returned
// parameter is along the world-space ray.
func intersectTransformed(r Ray, transform Mat4, box AABB) (Scalar, bool) {
	if transform == Mat4Identity() {
		return r.IntersectAABB(box)
	}
	inv, ok := Mat4Inverse(transform)
	if !ok {
		return 0, false
	}
	// Affine maps preserve the ray parameter, so t is valid in both spaces.
	local := Ray{Origin: Mat4MulPoint(inv, r.Origin), Dir: Mat4MulDir(inv, r.Dir)}
	return local.IntersectAABB(box)
}
