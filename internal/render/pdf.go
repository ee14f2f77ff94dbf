package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"collabCanvas/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// PDFSurface draws onto a single PDF page measured in points, one point per
// canvas pixel. PDF has no destination-out operator, so erasing paints the
// page background instead.
type PDFSurface struct {
	pdf        *gofpdf.Fpdf
	width      int
	height     int
	background color.NRGBA
	composite  Composite
	translate  func(string) string
	images     int
}

func NewPDFSurface(width, height int) *PDFSurface {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	return &PDFSurface{
		pdf:        pdf,
		width:      width,
		height:     height,
		background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		translate:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Output writes the finished document.
func (p *PDFSurface) Output(w io.Writer) error {
	return p.pdf.Output(w)
}

func (p *PDFSurface) Size() (int, int) { return p.width, p.height }

func (p *PDFSurface) Clear() {
	p.setFill(p.background)
	p.pdf.Rect(0, 0, float64(p.width), float64(p.height), "F")
}

func (p *PDFSurface) SetComposite(c Composite) { p.composite = c }

func (p *PDFSurface) FillCircle(center models.Point, radius float64, c color.Color) {
	p.setFill(p.ink(c))
	p.pdf.Circle(center.X, center.Y, radius, "F")
	p.resetAlpha()
}

func (p *PDFSurface) StrokePolyline(points []models.Point, width float64, c color.Color) {
	if len(points) == 0 {
		return
	}
	p.setStroke(p.ink(c), width)
	p.pdf.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.pdf.LineTo(pt.X, pt.Y)
	}
	p.pdf.DrawPath("D")
	p.resetAlpha()
}

func (p *PDFSurface) StrokeLine(from, to models.Point, width float64, c color.Color) {
	p.setStroke(p.ink(c), width)
	p.pdf.Line(from.X, from.Y, to.X, to.Y)
	p.resetAlpha()
}

func (p *PDFSurface) StrokeRect(r models.Rect, width float64, c color.Color) {
	p.setStroke(p.ink(c), width)
	p.pdf.SetLineJoinStyle("miter")
	p.pdf.Rect(r.X, r.Y, r.Width, r.Height, "D")
	p.pdf.SetLineJoinStyle("round")
	p.resetAlpha()
}

func (p *PDFSurface) StrokeCircle(center models.Point, radius, width float64, c color.Color) {
	p.setStroke(p.ink(c), width)
	p.pdf.Circle(center.X, center.Y, radius, "D")
	p.resetAlpha()
}

func (p *PDFSurface) FillText(text string, baseline models.Point, fontSize float64, c color.Color) {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	n := p.ink(c)
	p.pdf.SetTextColor(int(n.R), int(n.G), int(n.B))
	p.setAlpha(n)
	p.pdf.SetFont("Helvetica", "", fontSize)
	p.pdf.Text(baseline.X, baseline.Y, p.translate(text))
	p.resetAlpha()
}

func (p *PDFSurface) DrawImage(img image.Image, dst models.Rect) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	p.images++
	name := fmt.Sprintf("image-%d", p.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opts, &buf)
	p.pdf.ImageOptions(name, dst.X, dst.Y, dst.Width, dst.Height, false, opts, 0, "")
}

// Err reports the first error gofpdf accumulated.
func (p *PDFSurface) Err() error {
	return p.pdf.Error()
}

func (p *PDFSurface) ink(c color.Color) color.NRGBA {
	if p.composite == DestinationOut {
		return p.background
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func (p *PDFSurface) setFill(n color.NRGBA) {
	p.pdf.SetFillColor(int(n.R), int(n.G), int(n.B))
	p.setAlpha(n)
}

func (p *PDFSurface) setStroke(n color.NRGBA, width float64) {
	p.pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
	p.pdf.SetLineWidth(width)
	p.setAlpha(n)
}

func (p *PDFSurface) setAlpha(n color.NRGBA) {
	if n.A < 0xff {
		p.pdf.SetAlpha(float64(n.A)/0xff, "Normal")
	}
}

func (p *PDFSurface) resetAlpha() {
	p.pdf.SetAlpha(1, "Normal")
}
