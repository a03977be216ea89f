package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"pointview/hal"
	"pointview/internal/labels"
)

// Guard wraps step so a panic inside it is logged with its stack, drawn as a crash
// screen on fb, and returned as an error instead of killing the process.
func Guard(step func() error, logger *zap.Logger, fb hal.Framebuffer) func() error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			logger.Error("step panicked", zap.Any("panic", r), zap.ByteString("stack", stack))
			drawPanic(fb, r, stack)
			err = fmt.Errorf("panic in step: %v", r)
		}()
		return step()
	}
}

func drawPanic(fb hal.Framebuffer, value any, stack []byte) {
	canvas := labels.Canvas(fb)
	if canvas == nil {
		return
	}
	face, err := labels.Embedded(12)
	if err != nil {
		return
	}
	fb.ClearRGB(255, 255, 255)

	lines := []string{
		"pointview panic:",
		fmt.Sprintf("panic: %v", value),
	}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.ReplaceAll(line, "\t", "    "))
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	fg := color.RGBA{A: 255}
	lineH := labels.LineHeight(face)
	asc := face.Metrics().Ascent.Ceil()
	charW := labels.Width(face, "0")
	if lineH <= 0 || charW <= 0 {
		_ = fb.Present()
		return
	}
	cols := fb.Width() / charW
	if cols <= 0 {
		cols = 1
	}

	y := 0
	for _, line := range lines {
		for len(line) > 0 {
			if y+lineH > fb.Height() {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			labels.Text(canvas, face, 0, y+asc, chunk, fg)
			y += lineH
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
