package app

import "errors"

var (
	errNoDisplay   = errors.New("app: no framebuffer")
	errPixelFormat = errors.New("app: framebuffer must be RGBA8888")
)
