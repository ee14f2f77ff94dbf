package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"collabCanvas/internal/models"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const defaultFontSize = 16

var (
	regularFont     *opentype.Font
	regularFontErr  error
	regularFontOnce sync.Once
)

func loadRegularFont() (*opentype.Font, error) {
	regularFontOnce.Do(func() {
		regularFont, regularFontErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularFontErr
}

// Raster is an in-memory RGBA Surface. Every draw call builds a coverage
// mask for its own geometry and then composites one color through it.
type Raster struct {
	img        *image.RGBA
	background color.Color
	composite  Composite
	z          *vector.Rasterizer
	faces      map[float64]font.Face
}

// NewRaster allocates a width×height surface. A nil background clears to
// transparent.
func NewRaster(width, height int, background color.Color) *Raster {
	return &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: background,
		z:          vector.NewRasterizer(1, 1),
		faces:      make(map[float64]font.Face),
	}
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Clear() {
	src := image.Image(image.Transparent)
	if r.background != nil {
		src = image.NewUniform(r.background)
	}
	draw.Draw(r.img, r.img.Bounds(), src, image.Point{}, draw.Src)
}

func (r *Raster) SetComposite(c Composite) { r.composite = c }

func (r *Raster) FillCircle(center models.Point, radius float64, c color.Color) {
	r.fill(c, circleContour(center, radius, false))
}

func (r *Raster) StrokePolyline(points []models.Point, width float64, c color.Color) {
	r.fill(c, polylineContours(points, width/2)...)
}

func (r *Raster) StrokeLine(from, to models.Point, width float64, c color.Color) {
	r.StrokePolyline([]models.Point{from, to}, width, c)
}

func (r *Raster) StrokeRect(rect models.Rect, width float64, c color.Color) {
	h := width / 2
	outer := rectContour(rect.X-h, rect.Y-h, rect.X+rect.Width+h, rect.Y+rect.Height+h, false)
	if rect.Width <= width || rect.Height <= width {
		r.fill(c, outer)
		return
	}
	inner := rectContour(rect.X+h, rect.Y+h, rect.X+rect.Width-h, rect.Y+rect.Height-h, true)
	r.fill(c, outer, inner)
}

func (r *Raster) StrokeCircle(center models.Point, radius, width float64, c color.Color) {
	h := width / 2
	outer := circleContour(center, radius+h, false)
	if radius-h <= 0 {
		r.fill(c, outer)
		return
	}
	r.fill(c, outer, circleContour(center, radius-h, true))
}

func (r *Raster) FillText(text string, baseline models.Point, fontSize float64, c color.Color) {
	face := r.face(fontSize)
	if face == nil {
		return
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(baseline.X * 64), Y: fixed.Int26_6(baseline.Y * 64)},
	}
	d.DrawString(text)
}

func (r *Raster) DrawImage(img image.Image, dst models.Rect) {
	rect := image.Rect(
		int(math.Round(dst.X)), int(math.Round(dst.Y)),
		int(math.Round(dst.X+dst.Width)), int(math.Round(dst.Y+dst.Height)),
	)
	if rect.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(r.img, rect, img, img.Bounds(), xdraw.Over, nil)
}

func (r *Raster) face(size float64) font.Face {
	if size <= 0 {
		size = defaultFontSize
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	parsed, err := loadRegularFont()
	if err != nil {
		return nil
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	r.faces[size] = f
	return f
}

// fill rasterizes the contours into one mask. Solid contours wind one way
// and holes the other, so overlapping solids merge and holes cut out.
func (r *Raster) fill(c color.Color, contours ...[]models.Point) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, contour := range contours {
		for _, p := range contour {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return
	}
	rect := image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}

	r.z.Reset(rect.Dx(), rect.Dy())
	r.z.DrawOp = draw.Src
	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	for _, contour := range contours {
		if len(contour) < 3 {
			continue
		}
		r.z.MoveTo(float32(contour[0].X-ox), float32(contour[0].Y-oy))
		for _, p := range contour[1:] {
			r.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		r.z.ClosePath()
	}
	mask := image.NewAlpha(rect)
	r.z.Draw(mask, rect, image.Opaque, image.Point{})
	r.paint(rect, mask, c)
}

func (r *Raster) paint(rect image.Rectangle, mask *image.Alpha, c color.Color) {
	if r.composite == SourceOver {
		draw.DrawMask(r.img, rect, image.NewUniform(c), image.Point{}, mask, rect.Min, draw.Over)
		return
	}
	// destination-out keeps dst * (1 - srcAlpha); RGBA is premultiplied so
	// every channel scales alike.
	_, _, _, ca := c.RGBA()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A) * ca / 0xffff
			if m == 0 {
				continue
			}
			i := r.img.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				r.img.Pix[i+k] = uint8(uint32(r.img.Pix[i+k]) * (255 - m) / 255)
			}
		}
	}
}

// signedArea is positive for counter-clockwise contours in y-down space.
func signedArea(contour []models.Point) float64 {
	var a float64
	for i := range contour {
		p, q := contour[i], contour[(i+1)%len(contour)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// orient reverses contour when needed so solid contours have negative area
// and holes positive area.
func orient(contour []models.Point, hole bool) []models.Point {
	if a := signedArea(contour); (a > 0) != hole && a != 0 {
		for i, j := 0, len(contour)-1; i < j; i, j = i+1, j-1 {
			contour[i], contour[j] = contour[j], contour[i]
		}
	}
	return contour
}

func circleContour(center models.Point, radius float64, hole bool) []models.Point {
	if radius <= 0 {
		return nil
	}
	n := int(math.Ceil(2 * math.Pi * radius / 2))
	n = max(16, min(n, 360))
	out := make([]models.Point, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = models.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return orient(out, hole)
}

func rectContour(x0, y0, x1, y1 float64, hole bool) []models.Point {
	return orient([]models.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}, hole)
}

// polylineContours covers a round-capped, round-joined polyline with one
// quad per segment and one disc per vertex.
func polylineContours(points []models.Point, half float64) [][]models.Point {
	if half <= 0 || len(points) == 0 {
		return nil
	}
	out := make([][]models.Point, 0, 2*len(points))
	for i, p := range points {
		out = append(out, circleContour(p, half, false))
		if i == 0 {
			continue
		}
		a := points[i-1]
		dx, dy := p.X-a.X, p.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		out = append(out, orient([]models.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: p.X + nx, Y: p.Y + ny},
			{X: p.X - nx, Y: p.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}, false))
	}
	return out
}
