package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"collabCanvas/internal/models"
)

// Recorder is a Surface that writes every draw call as a line of text.
// Two renders are equivalent exactly when their recorded calls match.
type Recorder struct {
	Width, Height int
	Calls         []string
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) Clear() { r.Calls = append(r.Calls[:0], "clear") }

func (r *Recorder) SetComposite(c Composite) { r.record("composite %s", c) }

func (r *Recorder) FillCircle(center models.Point, radius float64, c color.Color) {
	r.record("fillCircle %s r=%g %s", pt(center), radius, HexColor(c))
}

func (r *Recorder) StrokePolyline(points []models.Point, width float64, c color.Color) {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = pt(p)
	}
	r.record("polyline [%s] w=%g %s", strings.Join(parts, " "), width, HexColor(c))
}

func (r *Recorder) StrokeLine(from, to models.Point, width float64, c color.Color) {
	r.record("line %s %s w=%g %s", pt(from), pt(to), width, HexColor(c))
}

func (r *Recorder) StrokeRect(rect models.Rect, width float64, c color.Color) {
	r.record("rect x=%g y=%g w=%g h=%g lw=%g %s", rect.X, rect.Y, rect.Width, rect.Height, width, HexColor(c))
}

func (r *Recorder) StrokeCircle(center models.Point, radius, width float64, c color.Color) {
	r.record("circle %s r=%g w=%g %s", pt(center), radius, width, HexColor(c))
}

func (r *Recorder) FillText(text string, baseline models.Point, fontSize float64, c color.Color) {
	r.record("text %q %s size=%g %s", text, pt(baseline), fontSize, HexColor(c))
}

func (r *Recorder) DrawImage(img image.Image, dst models.Rect) {
	b := img.Bounds()
	r.record("image %dx%d x=%g y=%g w=%g h=%g", b.Dx(), b.Dy(), dst.X, dst.Y, dst.Width, dst.Height)
}

func pt(p models.Point) string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}
