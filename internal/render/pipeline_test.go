package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImages map[string]error

func (s stubImages) Lookup(payload string) (image.Image, error) {
	if err, ok := s[payload]; ok {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func sampleEntities() []models.Entity {
	return []models.Entity{
		&models.Text{ID: "text-1-a", Anchor: models.Point{X: 5, Y: 30}, Content: "hi", Color: "#000000", FontSize: 12},
		&models.Shape{ID: "shape-2-a", Start: models.Point{X: 50, Y: 50}, End: models.Point{X: 10, Y: 30}, Color: "#0000ff", Width: 2, Kind: enums.SHAPE_RECTANGLE},
		&models.Shape{ID: "shape-2-b", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 20, Y: 10}, Color: "#00ff00", Width: 1, Kind: enums.SHAPE_CIRCLE},
		&models.Stroke{ID: "stroke-3-a", Points: models.Points{{X: 10, Y: 10}, {X: 20, Y: 20}}, Color: "#FF0000", Width: 4, Tool: enums.TOOL_BRUSH, Closed: true},
		&models.Stroke{ID: "stroke-4-a", Points: models.Points{{X: 15, Y: 15}}, Width: 6, Tool: enums.TOOL_ERASER, Closed: true},
		&models.Image{ID: "image-5-a", Anchor: models.Point{X: 1, Y: 2}, Width: 8, Height: 6, Payload: "ok"},
		&models.Shape{ID: "shape-6-a", Start: models.Point{X: 0, Y: 60}, End: models.Point{X: 60, Y: 0}, Color: "#123", Width: 3, Kind: enums.SHAPE_LINE},
	}
}

func snapshotOf(entities []models.Entity) *models.SessionSnapshot {
	snap := models.NewSessionSnapshot()
	for _, e := range entities {
		switch v := e.(type) {
		case *models.Stroke:
			snap.Strokes = append(snap.Strokes, v)
		case *models.Shape:
			snap.Shapes = append(snap.Shapes, v)
		case *models.Text:
			snap.Texts = append(snap.Texts, v)
		case *models.Image:
			snap.Images = append(snap.Images, v)
		}
	}
	return snap
}

func reversed(in []models.Entity) []models.Entity {
	out := make([]models.Entity, len(in))
	for i, e := range in {
		out[len(in)-1-i] = e
	}
	return out
}

func TestRenderLayeringAndCalls(t *testing.T) {
	p := NewPipeline(WithImages(stubImages{}))
	rec := NewRecorder(64, 64)
	p.Render(rec, snapshotOf(sampleEntities()))

	assert.Equal(t, []string{
		"clear",
		"composite source-over",
		"image 2x2 x=1 y=2 w=8 h=6",
		"polyline [(10,10) (20,20)] w=4 #ff0000ff",
		"composite destination-out",
		"fillCircle (15,15) r=3 #000000ff",
		"composite source-over",
		"rect x=10 y=30 w=40 h=20 lw=2 #0000ffff",
		"circle (10,5) r=10 w=1 #00ff00ff",
		"line (0,60) (60,0) w=3 #112233ff",
		`text "hi" (5,30) size=12 #000000ff`,
	}, rec.Calls)
}

func TestRenderIsIndependentOfInsertionOrder(t *testing.T) {
	p := NewPipeline(WithImages(stubImages{}))
	a, b := NewRecorder(64, 64), NewRecorder(64, 64)
	p.Render(a, snapshotOf(sampleEntities()))
	p.Render(b, snapshotOf(reversed(sampleEntities())))
	assert.Equal(t, a.Calls, b.Calls)

	ra, rb := NewRaster(64, 64, color.White), NewRaster(64, 64, color.White)
	p.Render(ra, snapshotOf(sampleEntities()))
	p.Render(rb, snapshotOf(reversed(sampleEntities())))
	assert.True(t, bytes.Equal(ra.Image().Pix, rb.Image().Pix))
}

func TestPreviewIsDrawnOnTopAndNotStored(t *testing.T) {
	p := NewPipeline()
	snap := snapshotOf([]models.Entity{&models.Text{ID: "text-1-a", Content: "x", Color: "#000"}})
	before := snap.Clone()
	preview := &models.Shape{Start: models.Point{X: 1, Y: 1}, End: models.Point{X: 3, Y: 5}, Width: 1, Color: "#000", Kind: enums.SHAPE_LINE}

	rec := NewRecorder(10, 10)
	p.RenderWithPreview(rec, snap, preview)
	assert.Equal(t, "line (1,1) (3,5) w=1 #000000ff", rec.Calls[len(rec.Calls)-1])
	assert.Equal(t, before, snap)
}

func TestPendingAndFailedImagesAreSkipped(t *testing.T) {
	var logs bytes.Buffer
	p := NewPipeline(
		WithImages(stubImages{"pending": errs.ErrImagePending, "bad": errors.Join(errs.ErrImageDecodeFailure)}),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	snap := snapshotOf([]models.Entity{
		&models.Image{ID: "image-1-a", Payload: "pending"},
		&models.Image{ID: "image-2-a", Payload: "bad"},
	})
	for i := 0; i < 3; i++ {
		rec := NewRecorder(10, 10)
		p.Render(rec, snap)
		assert.Equal(t, []string{"clear", "composite source-over"}, rec.Calls)
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "image-2-a"))
	assert.NotContains(t, logs.String(), "image-1-a")
}

func TestRasterEraserDoesNotLeak(t *testing.T) {
	snap := snapshotOf([]models.Entity{
		&models.Stroke{ID: "stroke-1-a", Points: models.Points{{X: 5, Y: 20}, {X: 35, Y: 20}}, Color: "#ff0000", Width: 6, Tool: enums.TOOL_BRUSH},
		&models.Stroke{ID: "stroke-2-a", Points: models.Points{{X: 20, Y: 20}}, Width: 10, Tool: enums.TOOL_ERASER},
		&models.Shape{ID: "shape-3-a", Start: models.Point{X: 30, Y: 5}, End: models.Point{X: 30, Y: 35}, Color: "#0000ff", Width: 2, Kind: enums.SHAPE_LINE},
	})
	r := NewRaster(40, 40, nil)
	NewPipeline().Render(r, snap)
	img := r.Image()

	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(8, 20))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 20))
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, img.RGBAAt(30, 20))
}

func TestRasterSinglePointIsDisc(t *testing.T) {
	snap := snapshotOf([]models.Entity{
		&models.Stroke{ID: "stroke-1-a", Points: models.Points{{X: 10, Y: 10}}, Color: "#000000", Width: 8, Tool: enums.TOOL_BRUSH},
	})
	r := NewRaster(20, 20, color.White)
	NewPipeline().Render(r, snap)
	img := r.Image()
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(16, 10))
}

func TestRasterRectangleOutline(t *testing.T) {
	snap := snapshotOf([]models.Entity{
		&models.Shape{ID: "shape-1-a", Start: models.Point{X: 50, Y: 50}, End: models.Point{X: 10, Y: 30}, Color: "#000000", Width: 2, Kind: enums.SHAPE_RECTANGLE},
	})
	r := NewRaster(64, 64, color.White)
	NewPipeline().Render(r, snap)
	img := r.Image()
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(30, 30))
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(10, 40))
	assert.Equal(t, white, img.RGBAAt(30, 40))
	assert.Equal(t, white, img.RGBAAt(5, 5))
}

func TestRasterDrawsText(t *testing.T) {
	snap := snapshotOf([]models.Entity{
		&models.Text{ID: "text-1-a", Anchor: models.Point{X: 2, Y: 30}, Content: "WWW", Color: "#000000", FontSize: 28},
	})
	r := NewRaster(80, 40, color.White)
	NewPipeline().Render(r, snap)

	dark := 0
	for i := 0; i < len(r.Image().Pix); i += 4 {
		if r.Image().Pix[i] < 0x80 {
			dark++
		}
	}
	require.Greater(t, dark, 20)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, ParseColor("#FF0000"))
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, ParseColor("#123"))
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, ParseColor("#11223344"))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, ParseColor("White"))
	assert.Equal(t, color.NRGBA{A: 0xff}, ParseColor("#zzzzzz"))
	assert.Equal(t, color.NRGBA{A: 0xff}, ParseColor(""))
	assert.Equal(t, "#112233ff", HexColor(ParseColor("#123")))
}

func TestPDFSurfaceProducesDocument(t *testing.T) {
	surface := NewPDFSurface(64, 64)
	NewPipeline(WithImages(stubImages{})).Render(surface, snapshotOf(sampleEntities()))
	require.NoError(t, surface.Err())

	var buf bytes.Buffer
	require.NoError(t, surface.Output(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
