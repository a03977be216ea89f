package quarkgl

import "testing"

func newTarget(w, h int) *RGBATarget {
	return &RGBATarget{Buf: make([]byte, w*h*4), Stride: w * 4, W: w, H: h}
}

func TestRenderDrawsCubeAtCenter(t *testing.T) {
	const w, h = 64, 64
	s := CreateScene(1)
	s.AddMesh(Mesh{
		Geometry: BoxGeometry(1),
		Material: Material{BaseColor: RGB(0, 0xFF, 0), Unlit: true},
	})
	r := NewRenderer(w, h, true)
	target := newTarget(w, h)
	r.Render(target, s)

	if got := target.At(w/2, h/2); got != RGB(0, 0xFF, 0) {
		t.Fatalf("center pixel = %+v, want green", got)
	}
	if got := target.At(0, 0); got != RGB(0, 0, 0) {
		t.Fatalf("corner pixel = %+v, want clear color", got)
	}
}

func TestRenderLinesClipBehindCamera(t *testing.T) {
	const w, h = 32, 32
	s := CreateScene(1)
	// A long line along z passes through the camera; it must be clipped, not wrapped.
	s.AddMesh(Mesh{Geometry: Geometry{
		Vertices: []Vertex{{Pos: V3(0, -0.5, -50), Color: RGB(0xFF, 0, 0)}, {Pos: V3(0, -0.5, 50), Color: RGB(0xFF, 0, 0)}},
		Lines:    []uint16{0, 1},
	}})
	r := NewRenderer(w, h, true)
	target := newTarget(w, h)
	r.Render(target, s)

	lit := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if target.At(x, y) == RGB(0xFF, 0, 0) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("clipped line drew no pixels")
	}
}

func TestClipLineRejectsBehind(t *testing.T) {
	a := Vec4{X: 0, Y: 0, Z: 0, W: -1}
	b := Vec4{X: 1, Y: 0, Z: 0, W: -2}
	if _, _, ok := clipLine(a, b); ok {
		t.Fatalf("segment behind the eye was kept")
	}
}

func TestRenderLightOffDrawsBaseColor(t *testing.T) {
	const w, h = 32, 32
	s := CreateScene(1)
	s.AddMesh(Mesh{Geometry: BoxGeometry(1), Material: Material{BaseColor: RGB(0, 0xFF, 0)}})
	r := NewRenderer(w, h, true)

	s.Light = Light{Mode: LightOff}
	target := newTarget(w, h)
	r.Render(target, s)
	if got := target.At(w/2, h/2); got != RGB(0, 0xFF, 0) {
		t.Fatalf("unlit center pixel = %+v, want green", got)
	}

	s.Light = Light{Mode: LightAmbientDirectional, Ambient: 0.5}
	target = newTarget(w, h)
	r.Render(target, s)
	if got := target.At(w/2, h/2); got.G != 127 {
		t.Fatalf("ambient center pixel G = %d, want 127", got.G)
	}
}
