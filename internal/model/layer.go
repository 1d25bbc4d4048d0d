package model

// BBox is a layer bounding box in document pixels
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right" validate:"gtecsfield=Left"`
	Bottom float64 `json:"bottom" validate:"gtecsfield=Top"`
}

// Width returns the box width in pixels
func (b BBox) Width() float64 { return b.Right - b.Left }

// Height returns the box height in pixels
func (b BBox) Height() float64 { return b.Bottom - b.Top }

// Valid reports whether the box is well-formed
func (b BBox) Valid() bool { return b.Right >= b.Left && b.Bottom >= b.Top }

// Dims holds pixel dimensions of a document or composition frame
type Dims struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Ratio returns width over height
func (d Dims) Ratio() float64 {
	if d.Height == 0 {
		return 0
	}
	return d.Width / d.Height
}

// SourceLayer is one layer of the parsed source design.
// Immutable once parsed; the matcher never mutates its inputs.
type SourceLayer struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Kind        LayerKind `json:"kind" validate:"required,oneof=text image shape group smart_object"`
	BBox        BBox      `json:"bbox"`
	TextContent string    `json:"textContent,omitempty"`
	OrderIndex  int       `json:"orderIndex" validate:"min=0"`
	Path        string    `json:"path,omitempty"`
}

// TargetPlaceholder is one fillable slot of the target template.
// Width/Height are optional placeholder pixel sizes; zero means the
// template parser did not report geometry for the slot.
type TargetPlaceholder struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Kind          LayerKind `json:"kind" validate:"required,oneof=text image shape group smart_object"`
	CompositionID string    `json:"compositionId,omitempty"`
	OrderIndex    int       `json:"orderIndex" validate:"min=0"`
	Width         float64   `json:"width,omitempty" validate:"min=0"`
	Height        float64   `json:"height,omitempty" validate:"min=0"`
}
