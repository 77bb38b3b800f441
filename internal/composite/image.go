package composite

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/ironsheep/visionflow/internal/imaging"
	"github.com/ironsheep/visionflow/internal/pipeline"
)

// ErrNoSource is returned by New when the source names neither a path nor an
// image.
var ErrNoSource = errors.New("either an image path or an image must be provided")

// BackgroundName is the name of the layer every composite starts with.
const BackgroundName = "Background"

// Source identifies where a composite's base image comes from. Path takes
// precedence when both fields are set.
type Source struct {
	Path  string
	Image image.Image

	// MaxBytes limits the size of the file at Path; zero disables the check.
	MaxBytes int64
}

// Metadata describes the base image. It is computed once at construction and
// never tracks later layer changes.
type Metadata struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Mode           string  `json:"mode"`
	Format         string  `json:"format"`
	MeanBrightness float64 `json:"mean_brightness"`
	StdBrightness  float64 `json:"std_brightness"`
	AspectRatio    float64 `json:"aspect_ratio"`
}

// HistoryEntry records one mutating operation on a composite.
type HistoryEntry struct {
	Operation  string         `json:"operation"`
	Params     map[string]any `json:"params"`
	LayerCount int            `json:"layer_count"`
}

// Image is a base image plus a stack of layers and an append-only processing
// history.
//
// The history is a log only; it cannot be replayed or undone. Use pipeline
// snapshots to return to an earlier state.
//
// Image is not safe for concurrent use.
type Image struct {
	base     *image.NRGBA
	layers   []*Layer
	history  []HistoryEntry
	metadata Metadata
}

// New builds a composite from src. The base image is normalized to opaque RGB
// and the layer stack is seeded with a Background layer holding a copy of it.
func New(src Source) (*Image, error) {
	var (
		base   *image.NRGBA
		format = "unknown"
	)

	switch {
	case src.Path != "":
		img, err := imaging.Open(src.Path, src.MaxBytes)
		if err != nil {
			return nil, err
		}
		base = img
		format = imaging.FormatName(src.Path)
	case src.Image != nil:
		base = imaging.ToRGB(src.Image)
	default:
		return nil, ErrNoSource
	}

	img := &Image{
		base:   base,
		layers: []*Layer{NewLayer(base, BackgroundName, 1, BlendNormal)},
	}
	img.metadata = analyzeBase(base, format)
	return img, nil
}

// Open is shorthand for New(Source{Path: path}).
func Open(path string) (*Image, error) {
	return New(Source{Path: path})
}

// FromImage is shorthand for New(Source{Image: img}).
func FromImage(img image.Image) (*Image, error) {
	return New(Source{Image: img})
}

func analyzeBase(base *image.NRGBA, format string) Metadata {
	b := imaging.Brightness(base)
	w, h := base.Rect.Dx(), base.Rect.Dy()

	m := Metadata{
		Width:          w,
		Height:         h,
		Mode:           "RGB",
		Format:         format,
		MeanBrightness: b.Mean,
		StdBrightness:  b.Std,
	}
	if h > 0 {
		m.AspectRatio = float64(w) / float64(h)
	}
	return m
}

// Base returns a copy of the base image.
func (img *Image) Base() *image.NRGBA {
	return imaging.ToRGB(img.base)
}

// AddLayer appends a layer holding a copy of src and returns it. The returned
// layer stays part of the stack, so changes to its Visible, Opacity or
// BlendMode fields affect later flattens.
func (img *Image) AddLayer(src image.Image, name string, opacity float64, mode BlendMode) *Layer {
	layer := NewLayer(src, name, opacity, mode)
	img.layers = append(img.layers, layer)
	img.record("add_layer", map[string]any{"name": name})
	return layer
}

// RemoveLayer removes the layer at index. Out-of-range indexes are ignored
// and reported as pipeline.OutOfRange. Removing the last remaining layer is
// allowed; Flatten then returns the base image.
func (img *Image) RemoveLayer(index int) pipeline.Result {
	if index < 0 || index >= len(img.layers) {
		return pipeline.OutOfRange
	}

	removed := img.layers[index]
	img.layers = slices.Delete(img.layers, index, index+1)
	img.record("remove_layer", map[string]any{"name": removed.Name})
	return pipeline.Applied
}

// Layer returns the layer at index.
func (img *Image) Layer(index int) (*Layer, bool) {
	if index < 0 || index >= len(img.layers) {
		return nil, false
	}
	return img.layers[index], true
}

// Layers returns the layer stack, bottom first. The slice is a copy; the
// layers are not.
func (img *Image) Layers() []*Layer {
	out := make([]*Layer, len(img.layers))
	copy(out, img.layers)
	return out
}

// LayerCount returns the number of layers.
func (img *Image) LayerCount() int {
	return len(img.layers)
}

// Flatten composites the visible layers into a new image.
func (img *Image) Flatten() *image.NRGBA {
	return flattenLayers(img.base, img.layers)
}

// SaveOption adjusts how Save encodes the output.
type SaveOption func(*imaging.SaveOptions)

// WithJPEGQuality sets the JPEG quality used for .jpg/.jpeg outputs.
func WithJPEGQuality(q int) SaveOption {
	return func(o *imaging.SaveOptions) {
		o.JPEGQuality = q
	}
}

// Save writes the flattened composite (or the base image when flatten is
// false) to path and records the save in the history.
func (img *Image) Save(path string, flatten bool, opts ...SaveOption) error {
	var so imaging.SaveOptions
	for _, opt := range opts {
		opt(&so)
	}

	out := img.base
	if flatten {
		out = img.Flatten()
	}
	if err := imaging.Save(out, path, so); err != nil {
		return err
	}

	img.record("save", map[string]any{"path": path, "flatten": flatten})
	return nil
}

// ApplyPipeline runs p over the current flattened composite and appends the
// result as a new full-opacity layer named after the pipeline.
func (img *Image) ApplyPipeline(p *pipeline.Pipeline, saveSnapshots bool) (*Layer, error) {
	out, err := p.Execute(img.Flatten(), saveSnapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to apply pipeline %q: %w", p.Name(), err)
	}

	layer := NewLayer(out, p.Name(), 1, BlendNormal)
	img.layers = append(img.layers, layer)
	img.record("apply_pipeline", map[string]any{"pipeline": p.Name(), "operations": p.Len()})
	return layer, nil
}

// History returns a copy of the processing history, oldest first.
func (img *Image) History() []HistoryEntry {
	out := make([]HistoryEntry, len(img.history))
	for i, e := range img.history {
		params := make(map[string]any, len(e.Params))
		for k, v := range e.Params {
			params[k] = v
		}
		e.Params = params
		out[i] = e
	}
	return out
}

// Metadata returns the base image metadata.
func (img *Image) Metadata() Metadata {
	return img.metadata
}

func (img *Image) record(op string, params map[string]any) {
	img.history = append(img.history, HistoryEntry{
		Operation:  op,
		Params:     params,
		LayerCount: len(img.layers),
	})
}
