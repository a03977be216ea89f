package app

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"

	"pointview/internal/labels"
	"pointview/internal/stream"
)

const (
	hudFontSize = 14
	hudInset    = 10
	buttonPadX  = 8
	buttonPadY  = 5

	buttonLabel     = "Detect Feature"
	msgExportFailed = "export failed"
	// flashMS is how long an export message stays up.
	flashMS = 3000
)

var (
	colorText      = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorButton    = color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	colorConnected = color.RGBA{R: 0x4C, G: 0xDF, B: 0x50, A: 0xFF}
	colorWaiting   = color.RGBA{R: 0xFF, G: 0xC1, B: 0x07, A: 0xFF}
	colorError     = color.RGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
)

type hudState struct {
	conn   stream.Status
	stale  bool
	points int
	nowMS  uint64
}

// hud is the flat overlay: the export button, connection status and point count.
type hud struct {
	face   font.Face
	button image.Rectangle
	lineH  int

	msg      string
	msgErr   bool
	msgUntil uint64
}

func newHUD(face font.Face) hud {
	lineH := labels.LineHeight(face)
	w := labels.Width(face, buttonLabel) + 2*buttonPadX
	return hud{
		face:   face,
		lineH:  lineH,
		button: image.Rect(hudInset, hudInset, hudInset+w, hudInset+lineH+2*buttonPadY),
	}
}

func (h *hud) hitButton(x, y int) bool {
	return image.Pt(x, y).In(h.button)
}

func (h *hud) flash(msg string, isErr bool, nowMS uint64) {
	h.msg = msg
	h.msgErr = isErr
	h.msgUntil = nowMS + flashMS
}

func (h *hud) draw(dst *image.RGBA, st hudState) {
	if dst == nil {
		return
	}
	asc := h.face.Metrics().Ascent.Ceil()

	draw.Draw(dst, h.button, image.NewUniform(colorButton), image.Point{}, draw.Src)
	labels.Text(dst, h.face, h.button.Min.X+buttonPadX, h.button.Min.Y+buttonPadY+asc, buttonLabel, colorText)

	if h.msg != "" && st.nowMS < h.msgUntil {
		c := colorText
		if h.msgErr {
			c = colorError
		}
		labels.Text(dst, h.face, hudInset, h.button.Max.Y+hudInset+asc, h.msg, c)
	}

	status, c := statusText(st)
	right := dst.Rect.Dx() - hudInset
	y := hudInset + asc
	labels.Text(dst, h.face, right-labels.Width(h.face, status), y, status, c)

	count := strconv.Itoa(st.points) + " points"
	labels.Text(dst, h.face, right-labels.Width(h.face, count), y+h.lineH, count, colorText)
}

func statusText(st hudState) (string, color.RGBA) {
	switch {
	case st.conn == stream.Connected && st.stale:
		return "connected (no data)", colorWaiting
	case st.conn == stream.Connected:
		return st.conn.String(), colorConnected
	case st.conn == stream.Connecting:
		return st.conn.String(), colorWaiting
	default:
		return st.conn.String(), colorError
	}
}
