package styles

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/visionflow/internal/filters"
	"github.com/ironsheep/visionflow/internal/pipeline"
)

// OperationName is the registry key of the style operation.
const OperationName = "apply_style"

// grainSeed keeps styled output reproducible.
const grainSeed = 1

// ErrUnknownStyle is returned for a style name the Creator does not hold.
var ErrUnknownStyle = errors.New("unknown style")

// Params is the parameter table of one style.
type Params map[string]float64

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Creator holds a set of named styles. It is safe for concurrent use.
type Creator struct {
	mu     sync.RWMutex
	names  []string
	styles map[string]Params
}

// NewCreator returns a Creator seeded with the built-in styles.
func NewCreator() *Creator {
	c := &Creator{styles: make(map[string]Params)}
	for _, s := range builtin {
		c.Define(s.name, s.params)
	}
	return c
}

var builtin = []struct {
	name   string
	params Params
}{
	{"cinematic", Params{"temperature": 0.1, "tint": -0.05, "contrast": 1.2, "saturation": 0.9, "vignette": 0.3, "grain": 0.05}},
	{"vintage", Params{"temperature": 0.2, "tint": 0.1, "contrast": 0.9, "saturation": 0.8, "vignette": 0.5, "grain": 0.15}},
	{"dramatic", Params{"temperature": 0, "tint": 0, "contrast": 1.5, "saturation": 1.2, "clarity": 1.0, "vignette": 0.2}},
	{"soft", Params{"temperature": 0.05, "tint": 0.05, "contrast": 0.85, "saturation": 0.95, "smoothness": 0.3, "glow": 0.2}},
	{"high_key", Params{"exposure": 0.5, "contrast": 0.8, "saturation": 0.9, "brightness_lift": 20}},
	{"low_key", Params{"exposure": -0.3, "contrast": 1.3, "saturation": 1.1, "shadows_crush": 15}},
}

// Define adds a style or replaces an existing one. A replaced style keeps its
// position in Names.
func (c *Creator) Define(name string, params Params) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.styles[name]; !ok {
		c.names = append(c.names, name)
	}
	c.styles[name] = params.clone()
}

// Names returns the style names in definition order.
func (c *Creator) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Style returns a copy of the named style's parameters.
func (c *Creator) Style(name string) (Params, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.styles[name]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// Apply runs the named style over img at the given intensity (0 leaves the
// image unchanged, 1 is the full style). The input is not modified.
//
// Filters run in this order, each only if the style sets its key:
// white balance, exposure, contrast, saturation, clarity, vignette, grain.
func (c *Creator) Apply(img image.Image, name string, intensity float64) (*image.NRGBA, error) {
	style, ok := c.Style(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStyle, name)
	}

	result := imaging.Clone(img)

	_, hasTemp := style["temperature"]
	_, hasTint := style["tint"]
	if hasTemp || hasTint {
		result = filters.AdjustWhiteBalance(result, style["temperature"]*intensity, style["tint"]*intensity)
	}
	if v, ok := style["exposure"]; ok {
		result = filters.AdjustExposure(result, v*intensity)
	}
	if v, ok := style["contrast"]; ok {
		result = filters.AdjustContrast(result, 1+(v-1)*intensity)
	}
	if v, ok := style["saturation"]; ok {
		result = filters.AdjustSaturation(result, 1+(v-1)*intensity)
	}
	if v, ok := style["clarity"]; ok {
		result = filters.Clarity(result, v*intensity)
	}
	if v, ok := style["vignette"]; ok {
		result = filters.Vignette(result, v*intensity, 0.5, 0.5)
	}
	if v, ok := style["grain"]; ok {
		result = filters.Grain(result, v*intensity, 1, grainSeed)
	}
	return result, nil
}

// Operation returns the creator as a pipeline operation taking "style"
// (required) and "intensity" (default 1).
func (c *Creator) Operation() pipeline.Operation {
	return &styleOp{creator: c}
}

// Register adds the style operation to reg under OperationName and returns
// reg.
func (c *Creator) Register(reg pipeline.Registry) pipeline.Registry {
	reg[OperationName] = c.Operation()
	return reg
}

type styleOp struct {
	creator *Creator
}

func (o *styleOp) Validate(params pipeline.Params) error {
	_, _, err := o.read(params)
	return err
}

func (o *styleOp) Apply(img image.Image, params pipeline.Params) (image.Image, error) {
	name, intensity, err := o.read(params)
	if err != nil {
		return nil, err
	}
	return o.creator.Apply(img, name, intensity)
}

func (o *styleOp) read(params pipeline.Params) (string, float64, error) {
	if err := params.CheckKeys("style", "intensity"); err != nil {
		return "", 0, fmt.Errorf("%s: %w", OperationName, err)
	}
	name, err := params.String("style", "")
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", OperationName, err)
	}
	intensity, err := params.Float("intensity", 1)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", OperationName, err)
	}
	if _, ok := o.creator.Style(name); !ok {
		return "", 0, fmt.Errorf("%s: %w: %q", OperationName, ErrUnknownStyle, name)
	}
	return name, intensity, nil
}
