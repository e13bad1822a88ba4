package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"qrmenu/internal/domain"
)

// URLPrefix is the public path stored images are served under.
const URLPrefix = "/uploads/"

const (
	maxSide     = 800
	jpegQuality = 80
	// decoded size is bounded by the declared dimensions, not the payload
	maxPixels = 40_000_000
)

var allowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var (
	ErrInvalidType = fmt.Errorf("%w: invalid file type, allowed: JPEG, PNG, WebP, GIF", domain.ErrValidation)
	ErrTooLarge    = fmt.Errorf("%w: file too large", domain.ErrValidation)
	ErrIO          = fmt.Errorf("%w: failed to store image", domain.ErrUpstream)
)

// Pipeline validates uploaded images, normalizes them to bounded JPEGs and
// stores them under dir.
type Pipeline struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewPipeline(dir string, maxBytes int64) *Pipeline {
	return &Pipeline{dir: dir, maxBytes: maxBytes, now: time.Now}
}

func (p *Pipeline) Dir() string { return p.dir }

// MaxBytes is the largest accepted payload.
func (p *Pipeline) MaxBytes() int64 { return p.maxBytes }

// Save stores the image read from r and returns its public URL.
func (p *Pipeline) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read: %v", ErrIO, err)
	}
	if int64(len(data)) > p.maxBytes {
		return "", fmt.Errorf("%w: maximum size %d bytes", ErrTooLarge, p.maxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidType)
	}
	if mt := mimetype.Detect(data); !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", fmt.Errorf("%w: got %s", ErrInvalidType, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode image", ErrInvalidType)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidType)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode image", ErrInvalidType)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s.jpg", p.now().UnixMilli(), uuid.NewString()[:8])
	if err := p.write(name, fit(src)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	return URLPrefix + name, nil
}

func (p *Pipeline) write(name string, img image.Image) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(p.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(err, os.Remove(path))
	}
	return nil
}

// fit scales src to lie within maxSide x maxSide without enlarging it and
// flattens transparency onto white.
func fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			h = max(1, h*maxSide/w)
			w = maxSide
		} else {
			w = max(1, w*maxSide/h)
			h = maxSide
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
