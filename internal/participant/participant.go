// Package participant is the drawing engine of one collaborator: it turns
// local pointer input into store mutations plus protocol messages, and
// applies messages from everyone else.
package participant

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/history"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/render"
	"collabCanvas/internal/replica"
	"collabCanvas/internal/store"

	"github.com/google/uuid"
)

// Transport carries messages to the relay. Emit must only enqueue.
type Transport interface {
	Emit(protocol.Message)
}

type Participant struct {
	mu sync.Mutex

	id          string
	cursorColor string
	store       *store.Store
	history     *history.Coordinator
	replica     *replica.Replica
	pipeline    *render.Pipeline
	transport   Transport
	now         func() time.Time
	logger      *slog.Logger

	tool      enums.Tool
	color     string
	lineWidth float64
	fontSize  float64

	activeStroke string
	preview      *models.Shape
}

type options struct {
	id          string
	cursorColor string
	transport   Transport
	pipeline    *render.Pipeline
	logger      *slog.Logger
	now         func() time.Time
	maxDepth    int
	width       int
	height      int
	standalone  bool
}

type Option func(*options)

func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithCursorColor sets the color peers use for this participant's cursor.
func WithCursorColor(c string) Option { return func(o *options) { o.cursorColor = c } }

func WithTransport(t Transport) Option { return func(o *options) { o.transport = t } }

func WithPipeline(p *render.Pipeline) Option { return func(o *options) { o.pipeline = p } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithHistoryDepth(n int) Option { return func(o *options) { o.maxDepth = n } }

func WithCanvasSize(w, h int) Option {
	return func(o *options) { o.width, o.height = w, h }
}

// Standalone lets remote messages apply without waiting for a state load,
// for a participant that owns its canvas from the start.
func Standalone() Option { return func(o *options) { o.standalone = true } }

func New(opts ...Option) *Participant {
	o := options{
		cursorColor: "#000000",
		logger:      slog.Default(),
		now:         time.Now,
		maxDepth:    history.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.pipeline == nil {
		o.pipeline = render.NewPipeline(render.WithLogger(o.logger))
	}

	s := store.New()
	s.SetCanvasSize(o.width, o.height)
	p := &Participant{
		id:          o.id,
		cursorColor: o.cursorColor,
		store:       s,
		pipeline:    o.pipeline,
		transport:   o.transport,
		now:         o.now,
		logger:      o.logger.With("participant", o.id),
		tool:        enums.TOOL_BRUSH,
		color:       "#000000",
		lineWidth:   2,
		fontSize:    20,
	}
	p.history = history.New(s,
		history.WithMaxDepth(o.maxDepth),
		history.WithEmitter(protocol.EmitterFunc(p.emit)),
		history.WithLogger(p.logger),
	)
	ropts := []replica.Option{replica.WithLogger(p.logger)}
	if o.standalone {
		ropts = append(ropts, replica.Authoritative())
	}
	p.replica = replica.New(s, p.history, ropts...)
	return p
}

func (p *Participant) ID() string { return p.id }

// The setters take the UI's values as they are.

func (p *Participant) SetTool(t enums.Tool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tool = t
}

func (p *Participant) SetColor(c string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.color = c
}

func (p *Participant) SetLineWidth(w float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lineWidth = w
}

func (p *Participant) SetFontSize(size float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fontSize = size
}

// PointerDown starts a stroke for freehand tools or a shape drag for shape
// tools. Other tools ignore pointer input.
func (p *Participant) PointerDown(at models.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endGesture()

	switch {
	case p.tool.IsFreehand():
		id := models.NewEntityID(enums.ENTITY_STROKE, p.now())
		style := models.StrokeStyle{Color: p.color, Width: p.lineWidth, Tool: p.tool}
		if err := p.store.BeginStroke(id, at, style, p.id); err != nil {
			p.logger.Warn("PointerDown - begin stroke failed", "err", err)
			return
		}
		p.activeStroke = id
		p.emit(protocol.StrokeBegin{ID: id, Point: at, Style: style, AuthorID: p.id})
	case p.tool.IsShape():
		p.preview = &models.Shape{
			Start:    at,
			End:      at,
			Color:    p.color,
			Width:    p.lineWidth,
			Kind:     p.tool.ShapeKind(),
			AuthorID: p.id,
		}
	}
}

// PointerMove extends the active stroke or updates the shape preview.
func (p *Participant) PointerMove(at models.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.activeStroke != "":
		if err := p.store.AppendPoint(p.activeStroke, at); err != nil {
			if errors.Is(err, errs.ErrUnknownEntity) {
				p.logger.Debug("PointerMove - stroke removed mid-drag", "id", p.activeStroke)
			}
			return
		}
		p.emit(protocol.StrokeMove{ID: p.activeStroke, Point: at})
	case p.preview != nil:
		p.preview.End = at
	}
}

// PointerUp finishes the gesture: strokes are finalized, shapes committed
// with their final geometry.
func (p *Participant) PointerUp(at models.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.preview != nil {
		p.preview.End = at
	}
	p.endGesture()
}

func (p *Participant) endGesture() {
	if id := p.activeStroke; id != "" {
		p.activeStroke = ""
		if err := p.store.FinalizeStroke(id); err != nil {
			p.logger.Debug("PointerUp - stroke gone", "id", id, "err", err)
			return
		}
		p.history.Commit(id)
		p.emit(protocol.StrokeEnd{ID: id})
	}
	if shape := p.preview; shape != nil {
		p.preview = nil
		shape.ID = models.NewEntityID(enums.ENTITY_SHAPE, p.now())
		p.commit(shape)
	}
}

// AddText places a text label. Empty content is ignored.
func (p *Participant) AddText(anchor models.Point, content string) string {
	if content == "" {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	text := &models.Text{
		ID:       models.NewEntityID(enums.ENTITY_TEXT, p.now()),
		Anchor:   anchor,
		Content:  content,
		Color:    p.color,
		FontSize: p.fontSize,
		AuthorID: p.id,
	}
	return p.commit(text)
}

// AddImage places an encoded image; payload is a data URL or a blob URL.
func (p *Participant) AddImage(anchor models.Point, width, height float64, payload string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	image := &models.Image{
		ID:       models.NewEntityID(enums.ENTITY_IMAGE, p.now()),
		Anchor:   anchor,
		Width:    width,
		Height:   height,
		Payload:  payload,
		AuthorID: p.id,
	}
	return p.commit(image)
}

func (p *Participant) commit(e models.Entity) string {
	if err := p.store.Insert(e); err != nil {
		p.logger.Warn("commit - insert failed", "id", e.EntityID(), "err", err)
		return ""
	}
	p.history.Commit(e.EntityID())
	if m, ok := protocol.CommitOf(e); ok {
		p.emit(m)
	}
	return e.EntityID()
}

// Undo reverses the most recent commit on the board, whoever made it.
func (p *Participant) Undo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.history.Undo("")
	return ok
}

func (p *Participant) Redo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.history.Redo()
	return ok
}

// Clear empties the canvas for everyone.
func (p *Participant) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activeStroke, p.preview = "", nil
	p.store.Clear()
	p.history.Reset()
	p.emit(protocol.Clear{})
}

// MoveCursor shares the pointer position without touching the canvas.
func (p *Participant) MoveCursor(at models.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(protocol.CursorUpdate{ParticipantID: p.id, Position: at, Color: p.cursorColor})
}

// Receive applies a message from another participant.
func (p *Participant) Receive(m protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := m.(protocol.CursorUpdate); ok && c.ParticipantID == p.id {
		return nil
	}
	return p.replica.Apply(m)
}

// Render draws the committed canvas plus the shape being dragged, if any.
func (p *Participant) Render(s render.Surface) {
	p.mu.Lock()
	snap := p.store.Snapshot()
	var preview *models.Shape
	if p.preview != nil {
		preview = p.preview.Clone()
	}
	p.mu.Unlock()
	p.pipeline.RenderWithPreview(s, snap, preview)
}

// Snapshot exports the canvas with the current time.
func (p *Participant) Snapshot() *models.SessionSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.store.Snapshot()
	snap.Timestamp = p.now().UnixMilli()
	return snap
}

func (p *Participant) Cursors() []models.RemoteCursor {
	return p.replica.Cursors()
}

// Loaded reports whether the participant has received the canvas state.
func (p *Participant) Loaded() bool {
	return p.replica.Loaded()
}

func (p *Participant) Revision() uint64 {
	return p.store.Revision()
}

func (p *Participant) emit(m protocol.Message) {
	if p.transport != nil {
		p.transport.Emit(m)
	}
}
