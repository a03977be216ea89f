package labels

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"pointview/hal"
	"pointview/quarkgl"
)

// Canvas returns an image view sharing fb's pixels, or nil when fb is not RGBA.
func Canvas(fb hal.Framebuffer) *image.RGBA {
	if fb == nil || fb.Format() != hal.PixelFormatRGBA8888 {
		return nil
	}
	return &image.RGBA{
		Pix:    fb.Buffer(),
		Stride: fb.StrideBytes(),
		Rect:   image.Rect(0, 0, fb.Width(), fb.Height()),
	}
}

// Text draws s with its baseline starting at (x, y).
func Text(dst *image.RGBA, face font.Face, x, y int, s string, c color.Color) {
	if dst == nil || face == nil || s == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Width returns the advance of s in whole pixels.
func Width(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns ascent plus descent in whole pixels.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Label is text anchored at a scene position.
type Label struct {
	Text  string
	Pos   quarkgl.Vec3
	Color color.RGBA
}

// AxisLabels returns the X, Y and Z labels placed along the axes.
func AxisLabels() []Label {
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	return []Label{
		{Text: "X", Pos: quarkgl.V3(5, 0, 0), Color: white},
		{Text: "Y", Pos: quarkgl.V3(0, 5, 0), Color: white},
		{Text: "Z", Pos: quarkgl.V3(0, 0, -5), Color: white},
	}
}

// DrawLabels projects each label through cam and draws it centered on its anchor.
// Labels behind the camera are skipped.
func DrawLabels(dst *image.RGBA, face font.Face, cam quarkgl.Camera, labels []Label) int {
	if dst == nil || face == nil {
		return 0
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	drawn := 0
	for _, l := range labels {
		x, y, ok := cam.Project(l.Pos, w, h)
		if !ok {
			continue
		}
		tw := Width(face, l.Text)
		asc := face.Metrics().Ascent.Ceil()
		Text(dst, face, int(x)-tw/2, int(y)+asc/2, l.Text, l.Color)
		drawn++
	}
	return drawn
}
