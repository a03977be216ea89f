package cloud

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointview/quarkgl"
)

func batch(n int, x float64) []Point3D {
	out := make([]Point3D, n)
	for i := range out {
		out[i] = P(i, x, 0.5, float64(i)/10)
	}
	return out
}

func newStore(t *testing.T) (*Store, *Reconciler, *quarkgl.Scene) {
	t.Helper()
	scene := quarkgl.CreateScene(8)
	store := NewStore(scene, nil)
	return store, NewReconciler(store), scene
}

func TestToScene(t *testing.T) {
	assert.Equal(t, quarkgl.V3(0, 0, 0), ToScene(r3.Vector{X: 0.5, Y: 0.5, Z: 0}))
	assert.Equal(t, quarkgl.V3(5, 5, -5), ToScene(r3.Vector{X: 1, Y: 0, Z: 1}))
}

func TestApplyLengthInvariant(t *testing.T) {
	store, rec, scene := newStore(t)
	for _, n := range []int{0, 3, 10, 1, 1, 0, 7} {
		rec.Apply(batch(n, 0.2))
		require.Equal(t, n, store.Len())
		require.Equal(t, n, scene.Len())
		for i := 0; i < n; i++ {
			require.Equal(t, i, store.At(i).Index())
		}
	}
}

func TestApplyKeepsIdentity(t *testing.T) {
	store, rec, _ := newStore(t)
	rec.Apply(batch(4, 0.1))
	before := []*RenderedPoint{store.At(0), store.At(1), store.At(2), store.At(3)}

	st := rec.Apply(batch(6, 0.9))
	assert.Equal(t, Stats{Updated: 4, Added: 2}, st)
	for i, p := range before {
		assert.Same(t, p, store.At(i))
		assert.Equal(t, ToScene(r3.Vector{X: 0.9, Y: 0.5, Z: float64(i) / 10}), p.Position())
	}
}

func TestApplyShrink(t *testing.T) {
	store, rec, scene := newStore(t)
	rec.Apply(batch(5, 0.1))
	kept := []*RenderedPoint{store.At(0), store.At(1)}
	gone := []*RenderedPoint{store.At(2), store.At(3), store.At(4)}
	goneMeshes := []int{gone[0].MeshID(), gone[1].MeshID(), gone[2].MeshID()}

	st := rec.Apply([]Point3D{P(0, 1, 0, 1), P(1, 0.5, 0.5, 0)})
	require.Equal(t, Stats{Updated: 2, Removed: 3}, st)
	require.Equal(t, 2, store.Len())

	assert.Same(t, kept[0], store.At(0))
	assert.Same(t, kept[1], store.At(1))
	want := []quarkgl.Vec3{quarkgl.V3(5, 5, -5), quarkgl.V3(0, 0, 0)}
	if diff := cmp.Diff(want, store.Positions()); diff != "" {
		t.Fatalf("positions (-want +got):\n%s", diff)
	}

	for i, p := range gone {
		assert.False(t, p.Live())
		assert.Equal(t, -1, p.MeshID())
		_, ok := scene.Mesh(goneMeshes[i])
		assert.False(t, ok, "mesh %d still in scene", goneMeshes[i])
	}
	assert.Nil(t, store.At(2))
}

func TestShrinkPopsLastFirst(t *testing.T) {
	store, rec, scene := newStore(t)
	rec.Apply(batch(3, 0.1))
	m1, m2 := store.At(1).MeshID(), store.At(2).MeshID()

	rec.Apply(batch(1, 0.1))
	// Freed ids are reused most recent first, so the next point gets index 1's mesh.
	rec.Apply(batch(2, 0.1))
	assert.Equal(t, m1, store.At(1).MeshID())
	_, ok := scene.Mesh(m2)
	assert.False(t, ok)
}

func TestSetPositionDetached(t *testing.T) {
	store, rec, scene := newStore(t)
	rec.Apply(batch(2, 0.1))
	p := store.At(1)
	rec.Apply(batch(1, 0.1))
	rec.Apply(batch(2, 0.3))

	// The new point recycled p's mesh; moving p must not move it.
	recycled := store.At(1)
	require.NotSame(t, p, recycled)
	assert.False(t, store.SetPosition(p, quarkgl.V3(9, 9, 9)))
	m, ok := scene.Mesh(recycled.MeshID())
	require.True(t, ok)
	assert.Equal(t, recycled.Position(), quarkgl.Mat4Translation(m.Transform))
}

func TestSetPositionMovesMesh(t *testing.T) {
	store, rec, scene := newStore(t)
	rec.Apply(batch(1, 0.1))
	p := store.At(0)
	require.True(t, store.SetPosition(p, quarkgl.V3(1, 2, 3)))
	m, ok := scene.Mesh(p.MeshID())
	require.True(t, ok)
	assert.Equal(t, quarkgl.V3(1, 2, 3), quarkgl.Mat4Translation(m.Transform))
	c := p.Bounds().Center()
	assert.InDelta(t, 1, c.X, 1e-9)
	assert.InDelta(t, 2, c.Y, 1e-9)
	assert.InDelta(t, 3, c.Z, 1e-9)
}

func TestDefaultShape(t *testing.T) {
	s := DefaultShape()
	assert.True(t, s.Material.Unlit)
	assert.Equal(t, quarkgl.Hex(0x00FF00), s.Material.BaseColor)
	assert.InDelta(t, PointSize, s.Geometry.Bounds.Max.X-s.Geometry.Bounds.Min.X, 1e-12)
}
