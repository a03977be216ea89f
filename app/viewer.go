// Package app wires the point cloud viewer together. Viewer is the single owner of
// the point store, the drag state, the camera and the scene; every mutation of them
// happens inside Step on the goroutine that renders.
package app

import (
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"

	"pointview/hal"
	"pointview/internal/cloud"
	"pointview/internal/export"
	"pointview/internal/interact"
	"pointview/internal/labels"
	"pointview/internal/stream"
	"pointview/kernel"
	"pointview/quarkgl"
)

// Options are the collaborators a Viewer is built from. Nil channels are fine:
// the viewer then simply never sees batches, status changes or a label font.
type Options struct {
	Batches *kernel.Mailbox[[]cloud.Point3D]
	Status  *kernel.Latest[stream.Status]
	Font    *kernel.Latest[font.Face]
	Saver   export.Saver
	Logger  *zap.Logger

	// StaleAfter flags a connected stream that has not delivered a batch for this
	// long. Zero disables the check.
	StaleAfter time.Duration
}

// Viewer renders the live point cloud and handles user input.
type Viewer struct {
	logger *zap.Logger

	fb     hal.Framebuffer
	keys   hal.Keyboard
	ptr    hal.Pointer
	ticks  <-chan uint64
	target *quarkgl.RGBATarget
	canvas *image.RGBA

	scene    *quarkgl.Scene
	renderer *quarkgl.Renderer
	orbit    quarkgl.OrbitController

	store    *cloud.Store
	rec      *cloud.Reconciler
	picker   *interact.Picker
	drag     *interact.Drag
	exporter *export.Exporter

	batches *kernel.Mailbox[[]cloud.Point3D]
	status  *kernel.Latest[stream.Status]
	fonts   *kernel.Latest[font.Face]
	fontSeq uint64

	labelFace font.Face
	axis      []labels.Label
	hud       hud

	conn        stream.Status
	staleAfter  uint64
	nowMS       uint64
	lastBatchMS uint64

	gesture gesture
	lastX   int
	lastY   int
}

// New builds a viewer drawing into h's framebuffer.
func New(h hal.HAL, opts Options) (*Viewer, error) {
	if h == nil || h.Display() == nil || h.Display().Framebuffer() == nil {
		return nil, errNoDisplay
	}
	fb := h.Display().Framebuffer()
	if fb.Format() != hal.PixelFormatRGBA8888 {
		return nil, errPixelFormat
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	saver := opts.Saver
	if saver == nil {
		saver = export.DirSaver{Dir: "."}
	}

	hudFace, err := labels.Embedded(hudFontSize)
	if err != nil {
		return nil, err
	}

	w, h2 := fb.Width(), fb.Height()
	v := &Viewer{
		logger: logger,
		fb:     fb,
		target: &quarkgl.RGBATarget{Buf: fb.Buffer(), Stride: fb.StrideBytes(), W: w, H: h2},
		canvas: labels.Canvas(fb),

		scene:    quarkgl.CreateScene(256),
		renderer: quarkgl.NewRenderer(w, h2, true),

		batches:    opts.Batches,
		status:     opts.Status,
		fonts:      opts.Font,
		axis:       labels.AxisLabels(),
		hud:        newHUD(hudFace),
		conn:       stream.Disconnected,
		staleAfter: uint64(opts.StaleAfter / time.Millisecond),
	}
	if in := h.Input(); in != nil {
		v.keys = in.Keyboard()
		v.ptr = in.Pointer()
	}
	if t := h.Time(); t != nil {
		v.ticks = t.Ticks()
	}

	v.renderer.ClearColor = quarkgl.RGB(0, 0, 0)
	addFurniture(v.scene)
	v.resetCamera()

	v.store = cloud.NewStore(v.scene, cloud.DefaultShape())
	v.rec = cloud.NewReconciler(v.store)
	v.picker = interact.NewPicker(v.store)
	v.drag = interact.NewDrag(v.picker, v.scene, v.store)
	v.exporter = export.New(v.store, saver)
	return v, nil
}

// Step runs one frame: pending batches, a finished font load, input, then drawing.
func (v *Viewer) Step() error {
	v.advanceClock()
	v.applyBatches()
	v.applyStatus()
	v.applyFont()
	v.handleInput()
	return v.draw()
}

// Store returns the point store.
func (v *Viewer) Store() *cloud.Store { return v.store }

// Drag returns the drag controller.
func (v *Viewer) Drag() *interact.Drag { return v.drag }

// Scene returns the scene the points are drawn in.
func (v *Viewer) Scene() *quarkgl.Scene { return v.scene }

// Export saves the current points and updates the HUD with the outcome.
func (v *Viewer) Export() (string, error) {
	loc, err := v.exporter.Export()
	if err != nil {
		v.logger.Error("export failed", zap.Error(err))
		v.hud.flash(msgExportFailed, true, v.nowMS)
		return "", err
	}
	v.logger.Info("exported points", zap.String("path", loc), zap.Int("points", v.store.Len()))
	v.hud.flash("saved "+export.FileName, false, v.nowMS)
	return loc, nil
}

func (v *Viewer) advanceClock() {
	if v.ticks == nil {
		return
	}
	for {
		select {
		case seq := <-v.ticks:
			if seq > v.nowMS {
				v.nowMS = seq
			}
		default:
			return
		}
	}
}

func (v *Viewer) applyBatches() {
	if v.batches == nil {
		return
	}
	n := v.batches.Drain(func(b []cloud.Point3D) {
		st := v.rec.Apply(b)
		if st.Added > 0 || st.Removed > 0 {
			v.logger.Debug("point count changed",
				zap.Int("points", v.store.Len()),
				zap.Int("added", st.Added),
				zap.Int("removed", st.Removed))
		}
	})
	if n > 0 {
		v.lastBatchMS = v.nowMS
	}
}

func (v *Viewer) applyStatus() {
	if v.status == nil {
		return
	}
	s, _, ok := v.status.Load()
	if !ok || s == v.conn {
		return
	}
	v.logger.Info("stream status", zap.Stringer("status", s))
	if s == stream.Connected {
		// Measure staleness from the moment of connecting.
		v.lastBatchMS = v.nowMS
	}
	v.conn = s
}

func (v *Viewer) applyFont() {
	if v.fonts == nil {
		return
	}
	face, seq, changed := v.fonts.Since(v.fontSeq)
	if !changed {
		return
	}
	v.fontSeq = seq
	v.labelFace = face
}

// stale reports whether a connected stream has gone quiet.
func (v *Viewer) stale() bool {
	if v.conn != stream.Connected || v.staleAfter == 0 {
		return false
	}
	return v.nowMS-v.lastBatchMS > v.staleAfter
}

func (v *Viewer) draw() error {
	v.renderer.Render(v.target, v.scene)
	if v.labelFace != nil {
		labels.DrawLabels(v.canvas, v.labelFace, v.scene.Camera, v.axis)
	}
	v.hud.draw(v.canvas, hudState{
		conn:   v.conn,
		stale:  v.stale(),
		points: v.store.Len(),
		nowMS:  v.nowMS,
	})
	return v.fb.Present()
}
