package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"

	"collabCanvas/internal/models"
)

const (
	DefaultCanvasWidth  = 1200
	DefaultCanvasHeight = 800
)

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Exporter renders finished snapshots to files. Unlike a live view it waits
// for every image payload to decode before drawing.
type Exporter struct {
	cache    *ImageCache
	pipeline *Pipeline
}

// NewExporter builds an exporter that fetches URL image payloads only from
// imageHosts; data URLs always decode.
func NewExporter(logger *slog.Logger, imageHosts ...string) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	cache := NewImageCache(WithCacheLogger(logger), AllowHosts(imageHosts...))
	return &Exporter{
		cache:    cache,
		pipeline: NewPipeline(WithImages(cache), WithLogger(logger)),
	}
}

func (e *Exporter) prepare(snap *models.SessionSnapshot) (int, int) {
	payloads := make([]string, 0, len(snap.Images))
	for _, im := range snap.Images {
		if im != nil {
			payloads = append(payloads, im.Payload)
		}
	}
	e.cache.Prefetch(payloads...)
	e.cache.Wait()
	width, height := snap.CanvasWidth, snap.CanvasHeight
	if width <= 0 || height <= 0 {
		width, height = DefaultCanvasWidth, DefaultCanvasHeight
	}
	return width, height
}

// Rasterize renders snap on a transparent layer and flattens it onto white,
// so erased areas come out white.
func (e *Exporter) Rasterize(snap *models.SessionSnapshot) *image.RGBA {
	width, height := e.prepare(snap)
	layer := NewRaster(width, height, nil)
	e.pipeline.Render(layer, snap)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), layer.Image(), image.Point{}, draw.Over)
	return out
}

func (e *Exporter) WritePNG(w io.Writer, snap *models.SessionSnapshot) error {
	return png.Encode(w, e.Rasterize(snap))
}

func (e *Exporter) WritePDF(w io.Writer, snap *models.SessionSnapshot) error {
	width, height := e.prepare(snap)
	surface := NewPDFSurface(width, height)
	e.pipeline.Render(surface, snap)
	if err := surface.Err(); err != nil {
		return err
	}
	return surface.Output(w)
}
