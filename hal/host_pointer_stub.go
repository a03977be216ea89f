//go:build !cgo && !windows && !darwin

package hal

func (p *hostPointer) poll() {
	// No mouse support without the window backend.
}
