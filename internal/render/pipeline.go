package render

import (
	"errors"
	"image"
	"log/slog"
	"sort"
	"sync"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
)

// ImageSource resolves an image payload to a decoded raster. It returns
// errs.ErrImagePending while a decode is in flight.
type ImageSource interface {
	Lookup(payload string) (image.Image, error)
}

type Pipeline struct {
	images ImageSource
	logger *slog.Logger

	mu     sync.Mutex
	failed map[string]struct{}
}

type Option func(*Pipeline)

func WithImages(src ImageSource) Option {
	return func(p *Pipeline) { p.images = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.Default(),
		failed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render clears the surface and draws images, strokes, shapes and texts in
// that fixed order. Within a kind entities are ordered by the creation time
// embedded in their id, then by id.
func (p *Pipeline) Render(s Surface, snap *models.SessionSnapshot) {
	s.Clear()
	s.SetComposite(SourceOver)
	if snap == nil {
		return
	}
	for _, im := range sorted(snap.Images) {
		p.drawImage(s, im)
	}
	for _, st := range sorted(snap.Strokes) {
		drawStroke(s, st)
	}
	for _, sh := range sorted(snap.Shapes) {
		drawShape(s, sh)
	}
	for _, t := range sorted(snap.Texts) {
		drawText(s, t)
	}
}

// RenderWithPreview renders the committed content and then the in-progress
// shape on top. The preview is never stored anywhere.
func (p *Pipeline) RenderWithPreview(s Surface, snap *models.SessionSnapshot, preview *models.Shape) {
	p.Render(s, snap)
	if preview != nil {
		drawShape(s, preview)
	}
}

func sorted[T models.Entity](in []T) []T {
	out := make([]T, 0, len(in))
	for _, e := range in {
		if !models.IsNil(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return models.LessByCreation(out[i].EntityID(), out[j].EntityID())
	})
	return out
}

func drawStroke(s Surface, st *models.Stroke) {
	if st == nil || len(st.Points) == 0 {
		return
	}
	if st.IsEraser() {
		s.SetComposite(DestinationOut)
		defer s.SetComposite(SourceOver)
	}
	c := ParseColor(st.Color)
	if len(st.Points) == 1 {
		s.FillCircle(st.Points[0], st.Width/2, c)
		return
	}
	s.StrokePolyline(st.Points, st.Width, c)
}

func drawShape(s Surface, sh *models.Shape) {
	if sh == nil {
		return
	}
	c := ParseColor(sh.Color)
	switch sh.Kind {
	case enums.SHAPE_RECTANGLE:
		s.StrokeRect(sh.Bounds(), sh.Width, c)
	case enums.SHAPE_CIRCLE:
		center, radius := sh.Circle()
		s.StrokeCircle(center, radius, sh.Width, c)
	case enums.SHAPE_LINE:
		s.StrokeLine(sh.Start, sh.End, sh.Width, c)
	}
}

func drawText(s Surface, t *models.Text) {
	if t == nil || t.Content == "" {
		return
	}
	s.FillText(t.Content, t.Anchor, t.FontSize, ParseColor(t.Color))
}

func (p *Pipeline) drawImage(s Surface, im *models.Image) {
	if im == nil || p.images == nil {
		return
	}
	img, err := p.images.Lookup(im.Payload)
	if err != nil {
		if !errors.Is(err, errs.ErrImagePending) {
			p.reportFailure(im.ID, err)
		}
		return
	}
	w, h := im.Width, im.Height
	if w <= 0 || h <= 0 {
		b := img.Bounds()
		w, h = float64(b.Dx()), float64(b.Dy())
	}
	s.DrawImage(img, models.Rect{X: im.Anchor.X, Y: im.Anchor.Y, Width: w, Height: h})
}

func (p *Pipeline) reportFailure(id string, err error) {
	p.mu.Lock()
	_, seen := p.failed[id]
	p.failed[id] = struct{}{}
	p.mu.Unlock()
	if !seen {
		p.logger.Warn("Render - image omitted", "id", id, "err", err)
	}
}
