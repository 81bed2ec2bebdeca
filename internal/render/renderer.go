// Package render paints game snapshots into images with fogleman/gg.
package render

import (
	"bytes"
	"image"
	"io"
	"log"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"zombie-shooter/internal/game"
)

var _ game.Canvas = (*gg.Context)(nil)

// Config sizes the output image.
type Config struct {
	Width    int     // Pixels (default: snapshot width, else 800)
	Height   int     // Pixels (default: snapshot height, else 600)
	FontPath string  // TTF/OTF file; empty searches common locations
	FontSize float64 // Points (default: 18)
}

// Stats counts renderer work.
type Stats struct {
	Frames    uint64 `json:"frames"`
	CacheHits uint64 `json:"cacheHits"`
	Font      string `json:"font"`
}

// Renderer draws snapshots onto a reusable gg.Context. It is safe for
// concurrent use; renders are serialized.
type Renderer struct {
	mu     sync.Mutex
	width  int
	height int
	dc     *gg.Context
	face   font.Face
	font   string

	// Last encoded PNG, keyed by snapshot sequence
	lastSeq uint64
	lastPNG []byte

	frames    uint64
	cacheHits uint64
}

// New creates a renderer. A missing system font falls back to the embedded
// Go font, so text always renders.
func New(cfg Config) (*Renderer, error) {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = 18
	}
	path := cfg.FontPath
	if path == "" {
		path = findFont()
	}

	face, source, err := loadFace(path, cfg.FontSize)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Renderer font loaded from: %s", source)

	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetFontFace(face)

	return &Renderer{
		width:  cfg.Width,
		height: cfg.Height,
		dc:     dc,
		face:   face,
		font:   source,
	}, nil
}

// Size returns the output dimensions.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render draws snap and returns a copy of the frame.
func (r *Renderer) Render(snap *game.GameSnapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, r.rgba(src).Pix)
	return out
}

// WritePNG encodes the frame for snap to w. Repeated calls for the same
// snapshot sequence reuse the previous encoding.
func (r *Renderer) WritePNG(w io.Writer, snap *game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap != nil && r.lastPNG != nil && snap.Sequence == r.lastSeq {
		r.cacheHits++
		_, err := w.Write(r.lastPNG)
		return err
	}

	r.draw(snap)
	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return err
	}
	if snap != nil {
		r.lastSeq = snap.Sequence
		r.lastPNG = buf.Bytes()
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SavePNG renders snap to a file.
func (r *Renderer) SavePNG(path string, snap *game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	return r.dc.SavePNG(path)
}

// Stats returns render counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Frames: r.frames, CacheHits: r.cacheHits, Font: r.font}
}

// draw paints one frame. The snapshot's field is scaled to the output size.
// Caller holds mu.
func (r *Renderer) draw(snap *game.GameSnapshot) {
	r.frames++
	dc := r.dc
	dc.Identity()
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	if snap == nil {
		return
	}
	if snap.Width > 0 && snap.Height > 0 {
		dc.Scale(float64(r.width)/snap.Width, float64(r.height)/snap.Height)
	}
	dc.SetLineWidth(1)
	game.DrawFrame(dc, snap)
}

// rgba returns src as *image.RGBA, converting only if needed.
func (r *Renderer) rgba(src image.Image) *image.RGBA {
	if img, ok := src.(*image.RGBA); ok {
		return img
	}
	b := src.Bounds()
	img := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, src.At(x, y))
		}
	}
	return img
}
