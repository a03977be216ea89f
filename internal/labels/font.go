// Package labels loads fonts and draws text into a framebuffer: the axis labels
// placed in the scene and the flat HUD text.
package labels

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// maxFontBytes caps how much of a remote font is read.
const maxFontBytes = 16 << 20

// Embedded returns the built-in Go Regular face at size points (72 DPI, so points
// are pixels).
func Embedded(size float64) (font.Face, error) {
	return parseFace(goregular.TTF, size)
}

// Load returns a face for src: an http(s) URL, a file path, or "" for the
// built-in face.
func Load(ctx context.Context, client *http.Client, src string, size float64) (font.Face, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case src == "":
		return Embedded(size)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		data, err = fetch(ctx, client, src)
	default:
		data, err = os.ReadFile(src)
		err = errors.Wrapf(err, "read font %s", src)
	}
	if err != nil {
		return nil, err
	}
	face, err := parseFace(data, size)
	if err != nil {
		return nil, errors.Wrapf(err, "font %s", src)
	}
	return face, nil
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build font request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch font %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch font %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read font %s", url)
	}
	return data, nil
}

func parseFace(data []byte, size float64) (font.Face, error) {
	if size <= 0 {
		size = 16
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new face")
	}
	return face, nil
}
