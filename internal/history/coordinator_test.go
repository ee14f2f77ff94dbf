package history

import (
	"testing"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []protocol.Message
}

func (r *recorder) Emit(m protocol.Message) { r.sent = append(r.sent, m) }

func newCoordinator(t *testing.T, opts ...Option) (*Coordinator, *store.Store, *recorder) {
	t.Helper()
	s := store.New()
	rec := &recorder{}
	return New(s, append([]Option{WithEmitter(rec)}, opts...)...), s, rec
}

func commitShape(t *testing.T, c *Coordinator, s *store.Store, id string) *models.Shape {
	t.Helper()
	shape := &models.Shape{ID: id, Start: models.Point{X: 1, Y: 1}, End: models.Point{X: 9, Y: 9}, Color: "#00ff00", Width: 3, Kind: enums.SHAPE_CIRCLE, AuthorID: "alice"}
	require.NoError(t, s.PutShape(shape))
	c.Commit(id)
	return shape
}

func TestUndoRedoRestoresExactRecord(t *testing.T) {
	c, s, rec := newCoordinator(t)
	shape := commitShape(t, c, s, "shape-1-a")

	undo, ok := c.Undo("")
	require.True(t, ok)
	assert.Equal(t, "shape-1-a", undo.TargetID)
	assert.False(t, s.Contains("shape-1-a"))

	redo, ok := c.Redo()
	require.True(t, ok)
	assert.Equal(t, shape, redo.Entity)
	got, ok := s.Get("shape-1-a")
	require.True(t, ok)
	assert.Equal(t, shape, got)

	require.Len(t, rec.sent, 2)
	assert.Equal(t, protocol.Undo{TargetID: "shape-1-a"}, rec.sent[0])
	assert.IsType(t, protocol.Redo{}, rec.sent[1])
}

func TestUndoAndRedoWithoutHistoryAreNoOps(t *testing.T) {
	c, s, rec := newCoordinator(t)
	_, ok := c.Undo("")
	assert.False(t, ok)
	_, ok = c.Redo()
	assert.False(t, ok)
	_, ok = c.Undo("shape-404-x")
	assert.False(t, ok)
	assert.Empty(t, rec.sent)
	assert.Zero(t, s.Len())
}

func TestUndoSkipsEntitiesRemovedElsewhere(t *testing.T) {
	c, s, _ := newCoordinator(t)
	commitShape(t, c, s, "shape-1-a")
	commitShape(t, c, s, "shape-2-a")
	s.Remove("shape-2-a")

	undo, ok := c.Undo("")
	require.True(t, ok)
	assert.Equal(t, "shape-1-a", undo.TargetID)
}

func TestNewCommitDiscardsRedo(t *testing.T) {
	c, s, _ := newCoordinator(t)
	commitShape(t, c, s, "shape-1-a")
	_, ok := c.Undo("")
	require.True(t, ok)
	commitShape(t, c, s, "shape-2-a")

	_, ok = c.Redo()
	assert.False(t, ok)
	assert.False(t, s.Contains("shape-1-a"))
}

func TestRemoteFormsShareHistory(t *testing.T) {
	c, s, rec := newCoordinator(t)
	shape := commitShape(t, c, s, "shape-1-a")

	removed, ok := c.ApplyUndo("shape-1-a")
	assert.True(t, ok)
	assert.Equal(t, "shape-1-a", removed)
	assert.False(t, s.Contains("shape-1-a"))
	_, ok = c.ApplyUndo("shape-1-a")
	assert.False(t, ok)

	assert.True(t, c.ApplyRedo(shape.Clone()))
	assert.True(t, s.Contains("shape-1-a"))
	assert.Empty(t, rec.sent)

	_, ok = c.Redo()
	assert.False(t, ok, "remote redo consumed the undone record")
	undo, ok := c.Undo("")
	require.True(t, ok)
	assert.Equal(t, "shape-1-a", undo.TargetID)
}

func TestUndoMidDragRemovesOpenStroke(t *testing.T) {
	c, s, _ := newCoordinator(t)
	require.NoError(t, s.BeginStroke("stroke-1-a", models.Point{}, models.StrokeStyle{Tool: enums.TOOL_BRUSH, Width: 2}, ""))
	_, ok := c.ApplyUndo("stroke-1-a")
	assert.True(t, ok)
	assert.Error(t, s.AppendPoint("stroke-1-a", models.Point{X: 1}))
}

func TestDepthIsBounded(t *testing.T) {
	c, s, _ := newCoordinator(t, WithMaxDepth(2))
	for _, id := range []string{"shape-1-a", "shape-2-a", "shape-3-a"} {
		commitShape(t, c, s, id)
	}
	committed, _ := c.Depth()
	assert.Equal(t, 2, committed)

	for i := 0; i < 3; i++ {
		c.Undo("")
	}
	assert.True(t, s.Contains("shape-1-a"), "oldest commit fell out of history")
	_, undone := c.Depth()
	assert.Equal(t, 2, undone)
}

func TestSeedReplacesHistory(t *testing.T) {
	c, s, _ := newCoordinator(t)
	commitShape(t, c, s, "shape-1-a")
	require.NoError(t, s.PutText(&models.Text{ID: "text-2-a"}))
	c.Seed([]string{"text-2-a"})

	undo, ok := c.Undo("")
	require.True(t, ok)
	assert.Equal(t, "text-2-a", undo.TargetID)
	_, ok = c.Undo("")
	assert.False(t, ok)
}

func TestRepeatedRemoteRedoKeepsOrder(t *testing.T) {
	c, s, _ := newCoordinator(t)
	shape := commitShape(t, c, s, "shape-1-a")
	_, ok := c.ApplyUndo("shape-1-a")
	require.True(t, ok)
	assert.True(t, c.ApplyRedo(shape.Clone()))
	commitShape(t, c, s, "shape-2-a")

	assert.False(t, c.ApplyRedo(shape.Clone()))
	undo, ok := c.Undo("")
	require.True(t, ok)
	assert.Equal(t, "shape-2-a", undo.TargetID)
}
