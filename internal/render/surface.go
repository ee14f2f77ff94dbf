// Package render turns a canvas snapshot into draw calls on a Surface.
// The output depends only on the snapshot contents, never on the order in
// which those contents were assembled.
package render

import (
	"image"
	"image/color"

	"collabCanvas/internal/models"
)

// Composite selects how subsequent draw calls combine with existing pixels.
type Composite int

const (
	// SourceOver paints over existing pixels.
	SourceOver Composite = iota
	// DestinationOut erases existing pixels under the painted area.
	DestinationOut
)

func (c Composite) String() string {
	if c == DestinationOut {
		return "destination-out"
	}
	return "source-over"
}

// Surface is the pixel primitive layer. Lines use round caps and joins.
type Surface interface {
	Size() (width, height int)
	Clear()
	SetComposite(Composite)
	FillCircle(center models.Point, radius float64, c color.Color)
	StrokePolyline(points []models.Point, width float64, c color.Color)
	StrokeLine(from, to models.Point, width float64, c color.Color)
	StrokeRect(r models.Rect, width float64, c color.Color)
	StrokeCircle(center models.Point, radius, width float64, c color.Color)
	FillText(text string, baseline models.Point, fontSize float64, c color.Color)
	DrawImage(img image.Image, dst models.Rect)
}
