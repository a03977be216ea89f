// Package hal is the viewer's only contact point with the host: a framebuffer to
// draw into, keyboard and pointer input, and a millisecond tick stream.
package hal

import "errors"

// ErrStopped is returned by a step to end the run cleanly. Runners return nil for
// it.
var ErrStopped = errors.New("stopped")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGBA8888 is 32bpp, bytes in R, G, B, A order.
	PixelFormatRGBA8888 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
)

// KeyEvent is a keyboard event. Text input arrives with Code KeyUnknown and the
// typed Rune.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// PointerKind is what a PointerEvent reports.
type PointerKind uint8

const (
	PointerDown PointerKind = iota + 1
	PointerMove
	PointerUp
	PointerWheel
)

// Button is a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// PointerEvent is a mouse event in framebuffer pixel coordinates. WheelY is set for
// PointerWheel only; positive scrolls up.
type PointerEvent struct {
	Kind   PointerKind
	Button Button
	X, Y   int
	WheelY float64
}

// Pointer provides mouse events.
type Pointer interface {
	Events() <-chan PointerEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// Time provides a base tick stream.
//
// On the host one tick is one millisecond of wall time.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the viewer and the outside world.
type HAL interface {
	Display() Display
	Input() Input
	Time() Time
}
