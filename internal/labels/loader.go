package labels

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"

	"pointview/kernel"
)

// Loader loads the label font once, off the render goroutine.
type Loader struct {
	Src     string
	Size    float64
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
}

// Run loads the font and publishes it to out. A failed load is logged and leaves
// out empty, so labels never appear; it is not returned as an error.
func (l Loader) Run(ctx context.Context, out *kernel.Latest[font.Face]) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	face, err := Load(ctx, l.Client, l.Src, l.Size)
	if err != nil {
		if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
			return nil
		}
		logger.Warn("label font unavailable, axis labels disabled", zap.String("src", l.Src), zap.Error(err))
		return nil
	}
	out.Store(face)
	logger.Debug("label font loaded", zap.String("src", l.Src))
	return nil
}
