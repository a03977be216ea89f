package app

import (
	"math"

	"go.uber.org/zap"

	"pointview/hal"
	"pointview/internal/interact"
	"pointview/quarkgl"
)

type gesture uint8

const (
	gestureNone gesture = iota
	gestureOrbit
	gesturePan
)

const (
	defaultRadius = 5
	minRadius     = 0.5
	maxRadius     = 500
	// zoomStep is the fraction of the current distance one wheel notch moves.
	zoomStep = 0.1
	// keyPanPixels is how far one arrow key press pans, in screen pixels.
	keyPanPixels = 7
)

func (v *Viewer) resetCamera() {
	v.orbit = quarkgl.OrbitController{
		Radius:    defaultRadius,
		MinRadius: minRadius,
		MaxRadius: maxRadius,
	}
	v.orbit.Apply(&v.scene.Camera)
}

func (v *Viewer) handleInput() {
	if v.ptr != nil {
		v.drainPointer()
	}
	if v.keys != nil {
		v.drainKeys()
	}
}

func (v *Viewer) drainPointer() {
	for {
		select {
		case ev := <-v.ptr.Events():
			v.onPointer(ev)
		default:
			return
		}
	}
}

func (v *Viewer) drainKeys() {
	for {
		select {
		case ev := <-v.keys.Events():
			v.onKey(ev)
		default:
			return
		}
	}
}

// ray returns the world ray under the pixel (x, y).
func (v *Viewer) ray(x, y int) quarkgl.Ray {
	w, h := v.fb.Width(), v.fb.Height()
	nx, ny := interact.NDC(float64(x), float64(y), w, h)
	return v.scene.Camera.Ray(nx, ny, float64(w)/float64(h))
}

func (v *Viewer) onPointer(ev hal.PointerEvent) {
	dx, dy := ev.X-v.lastX, ev.Y-v.lastY
	v.lastX, v.lastY = ev.X, ev.Y

	switch ev.Kind {
	case hal.PointerDown:
		v.onPointerDown(ev)
	case hal.PointerMove:
		switch {
		case v.drag.State() == interact.Dragging:
			v.drag.PointerMove(v.ray(ev.X, ev.Y))
		case v.gesture == gestureOrbit:
			v.rotate(dx, dy)
		case v.gesture == gesturePan:
			v.pan(dx, dy)
		}
	case hal.PointerUp:
		if ev.Button == hal.ButtonLeft {
			v.drag.PointerUp()
		}
		v.gesture = gestureNone
	case hal.PointerWheel:
		v.orbit.Zoom(-ev.WheelY * zoomStep * v.orbit.Radius)
		v.orbit.Apply(&v.scene.Camera)
	}
}

func (v *Viewer) onPointerDown(ev hal.PointerEvent) {
	if v.gesture != gestureNone || v.drag.State() == interact.Dragging {
		return
	}
	switch ev.Button {
	case hal.ButtonLeft:
		if v.hud.hitButton(ev.X, ev.Y) {
			_, _ = v.Export()
			return
		}
		if v.drag.PointerDown(v.ray(ev.X, ev.Y)) {
			v.logger.Debug("drag start", zap.Int("index", v.drag.Selected().Index()))
			return
		}
		v.gesture = gestureOrbit
	case hal.ButtonRight, hal.ButtonMiddle:
		v.gesture = gesturePan
	}
}

func (v *Viewer) onKey(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	switch ev.Code {
	case hal.KeyUp:
		v.pan(0, keyPanPixels)
	case hal.KeyDown:
		v.pan(0, -keyPanPixels)
	case hal.KeyLeft:
		v.pan(keyPanPixels, 0)
	case hal.KeyRight:
		v.pan(-keyPanPixels, 0)
	case hal.KeyEscape:
		v.resetCamera()
	case hal.KeyUnknown:
		if ev.Rune == 'd' || ev.Rune == 'D' {
			_, _ = v.Export()
		}
	}
}

// rotate orbits by a pointer delta; a full window height is one turn.
func (v *Viewer) rotate(dx, dy int) {
	h := float64(v.fb.Height())
	v.orbit.Rotate(-2*math.Pi*float64(dx)/h, -2*math.Pi*float64(dy)/h)
	v.orbit.Apply(&v.scene.Camera)
}

// pan moves the target so the scene under the pointer follows it.
func (v *Viewer) pan(dx, dy int) {
	cam := v.scene.Camera
	dist := quarkgl.Len(cam.Position.Sub(cam.Target))
	perPixel := 2 * dist * math.Tan(cam.FOVYRad/2) / float64(v.fb.Height())
	v.orbit.Pan(cam, -float64(dx)*perPixel, float64(dy)*perPixel)
	v.orbit.Apply(&v.scene.Camera)
}
