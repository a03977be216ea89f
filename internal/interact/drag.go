package interact

import (
	"pointview/internal/cloud"
	"pointview/quarkgl"
)

// State is the drag controller state.
type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Raycaster intersects a ray with every pickable surface. *quarkgl.Scene implements
// it.
type Raycaster interface {
	Raycast(r quarkgl.Ray) (quarkgl.Hit, bool)
}

// Mover repositions a point. *cloud.Store implements it.
type Mover interface {
	SetPosition(p *cloud.RenderedPoint, pos quarkgl.Vec3) bool
}

// Drag moves a picked point along with the pointer.
//
// Move and up events are only acted on while Dragging; a down event while Dragging
// is ignored.
type Drag struct {
	picker *Picker
	scene  Raycaster
	mover  Mover

	state    State
	selected *cloud.RenderedPoint
	offset   quarkgl.Vec3
}

// NewDrag returns an idle controller. picker chooses the grabbed point, scene
// supplies the surface under the pointer while dragging, and mover applies moves.
func NewDrag(picker *Picker, scene Raycaster, mover Mover) *Drag {
	return &Drag{picker: picker, scene: scene, mover: mover}
}

func (d *Drag) State() State { return d.state }

// Selected returns the point being dragged, or nil.
func (d *Drag) Selected() *cloud.RenderedPoint { return d.selected }

// PointerDown starts a drag when r hits a point. It reports whether a point was
// grabbed.
func (d *Drag) PointerDown(r quarkgl.Ray) bool {
	if d.state == Dragging {
		if d.selected.Live() {
			return false
		}
		d.reset()
	}
	p, hit, ok := d.picker.Pick(r)
	if !ok {
		return false
	}
	d.selected = p
	d.offset = p.Position().Sub(hit.Point)
	d.state = Dragging
	return true
}

// PointerMove repositions the selected point under r, keeping the grab offset. It
// reports whether the point moved.
func (d *Drag) PointerMove(r quarkgl.Ray) bool {
	if d.state != Dragging {
		return false
	}
	if !d.selected.Live() {
		d.reset()
		return false
	}
	hit, ok := d.scene.Raycast(r)
	if !ok {
		return false
	}
	return d.mover.SetPosition(d.selected, hit.Point.Add(d.offset))
}

// PointerUp ends the drag.
func (d *Drag) PointerUp() {
	if d.state != Dragging {
		return
	}
	d.reset()
}

func (d *Drag) reset() {
	d.state = Idle
	d.selected = nil
	d.offset = quarkgl.Vec3{}
}
