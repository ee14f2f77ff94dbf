package enums

// Tool is the drawing tool selected in the UI layer.
type Tool string

const (
	TOOL_BRUSH     Tool = "brush"
	TOOL_ERASER    Tool = "eraser"
	TOOL_RECTANGLE Tool = "rectangle"
	TOOL_CIRCLE    Tool = "circle"
	TOOL_LINE      Tool = "line"
	TOOL_TEXT      Tool = "text"
	TOOL_IMAGE     Tool = "image"
)

// IsFreehand reports whether the tool produces strokes.
func (t Tool) IsFreehand() bool {
	return t == TOOL_BRUSH || t == TOOL_ERASER
}

// IsShape reports whether the tool produces a two-point shape.
func (t Tool) IsShape() bool {
	return t == TOOL_RECTANGLE || t == TOOL_CIRCLE || t == TOOL_LINE
}

type ShapeKind string

const (
	SHAPE_RECTANGLE ShapeKind = "rectangle"
	SHAPE_CIRCLE    ShapeKind = "circle"
	SHAPE_LINE      ShapeKind = "line"
)

type EntityKind string

const (
	ENTITY_STROKE EntityKind = "stroke"
	ENTITY_SHAPE  EntityKind = "shape"
	ENTITY_TEXT   EntityKind = "text"
	ENTITY_IMAGE  EntityKind = "image"
)

// ShapeKind maps a shape tool to the kind of shape it commits.
func (t Tool) ShapeKind() ShapeKind {
	switch t {
	case TOOL_CIRCLE:
		return SHAPE_CIRCLE
	case TOOL_LINE:
		return SHAPE_LINE
	}
	return SHAPE_RECTANGLE
}
