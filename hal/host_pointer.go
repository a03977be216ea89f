package hal

type hostPointer struct {
	ch chan PointerEvent

	x, y   int
	seen   bool
	wheelY float64
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, 256)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

func (p *hostPointer) emit(ev PointerEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// moveTo emits a move when the cursor position changed since the last call.
func (p *hostPointer) moveTo(x, y int) {
	if p.seen && x == p.x && y == p.y {
		return
	}
	p.x, p.y, p.seen = x, y, true
	p.emit(PointerEvent{Kind: PointerMove, X: x, Y: y})
}
