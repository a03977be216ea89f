//go:build cgo || windows || darwin

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var buttonMap = [...]struct {
	mb  ebiten.MouseButton
	btn Button
}{
	{ebiten.MouseButtonLeft, ButtonLeft},
	{ebiten.MouseButtonRight, ButtonRight},
	{ebiten.MouseButtonMiddle, ButtonMiddle},
}

// poll turns this frame's mouse state into events: the move first, then button
// edges, then the wheel.
func (p *hostPointer) poll() {
	x, y := ebiten.CursorPosition()
	p.moveTo(x, y)

	for _, m := range buttonMap {
		if inpututil.IsMouseButtonJustPressed(m.mb) {
			p.emit(PointerEvent{Kind: PointerDown, Button: m.btn, X: x, Y: y})
		}
		if inpututil.IsMouseButtonJustReleased(m.mb) {
			p.emit(PointerEvent{Kind: PointerUp, Button: m.btn, X: x, Y: y})
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		p.emit(PointerEvent{Kind: PointerWheel, X: x, Y: y, WheelY: wy})
	}
}
