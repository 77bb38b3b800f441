package composite

import (
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/visionflow/internal/imaging"
)

// BlendMode selects how a layer is combined with the layers beneath it.
type BlendMode string

const (
	// BlendNormal interpolates linearly between the accumulator and the layer.
	BlendNormal BlendMode = "normal"

	// BlendMultiply multiplies the accumulator by the layer, mixed in by opacity.
	BlendMultiply BlendMode = "multiply"
)

// Layer is one image in a composite's layer stack.
//
// A layer owns its pixel buffer: constructing or copying a layer always makes
// an independent copy, so no two layers share pixels.
type Layer struct {
	// ID uniquely identifies the layer within a process.
	ID uuid.UUID

	// Image holds the layer pixels as opaque RGB.
	Image *image.NRGBA

	Name string

	// Opacity is in [0, 1]. Values outside that range are clamped when the
	// layer is created and again when it is blended.
	Opacity float64

	// BlendMode is the blend formula. Unknown modes blend as BlendNormal.
	BlendMode BlendMode

	// Visible layers take part in Flatten.
	Visible bool
}

// NewLayer creates a visible layer holding a copy of img.
func NewLayer(img image.Image, name string, opacity float64, mode BlendMode) *Layer {
	if mode == "" {
		mode = BlendNormal
	}
	return &Layer{
		ID:        uuid.New(),
		Image:     imaging.ToRGB(img),
		Name:      name,
		Opacity:   clampOpacity(opacity),
		BlendMode: mode,
		Visible:   true,
	}
}

// Copy returns a deep copy of the layer with a fresh ID.
func (l *Layer) Copy() *Layer {
	c := *l
	c.ID = uuid.New()
	c.Image = imaging.ToRGB(l.Image)
	return &c
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
