package filters

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/visionflow/internal/pipeline"
)

// Param documents one parameter of a registered operation.
type Param struct {
	Name        string `json:"name"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description"`
}

// Operation is a filter bound to a documented parameter schema. It implements
// pipeline.Operation and pipeline.Validator: parameters are checked before
// the transform runs and unknown keys are rejected.
type Operation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`

	bind func(r *reader) transform
}

type transform func(img image.Image) (image.Image, error)

// Validate checks params against the operation schema.
func (o *Operation) Validate(params pipeline.Params) error {
	_, err := o.prepare(params)
	return err
}

// Apply validates params and runs the filter on img.
func (o *Operation) Apply(img image.Image, params pipeline.Params) (image.Image, error) {
	fn, err := o.prepare(params)
	if err != nil {
		return nil, err
	}
	return fn(img)
}

func (o *Operation) prepare(params pipeline.Params) (transform, error) {
	keys := make([]string, len(o.Params))
	for i, p := range o.Params {
		keys[i] = p.Name
	}
	if err := params.CheckKeys(keys...); err != nil {
		return nil, fmt.Errorf("%s: %w", o.Name, err)
	}

	r := &reader{params: params}
	fn := o.bind(r)
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", o.Name, r.err)
	}
	return fn, nil
}

// reader pulls typed values out of a parameter bag, keeping the first error.
type reader struct {
	params pipeline.Params
	err    error
}

func (r *reader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) float(key string, def float64) float64 {
	v, err := r.params.Float(key, def)
	r.keep(err)
	return v
}

func (r *reader) int(key string, def int) int {
	v, err := r.params.Int(key, def)
	r.keep(err)
	return v
}

func (r *reader) int64(key string, def int64) int64 {
	return int64(r.int(key, int(def)))
}

func (r *reader) string(key, def string) string {
	v, err := r.params.String(key, def)
	r.keep(err)
	return v
}

// triple reads a 3-element numeric list, e.g. an RGB offset.
func (r *reader) triple(key string) [3]float64 {
	var out [3]float64
	v, err := r.params.Floats(key, nil)
	if err != nil {
		r.keep(err)
		return out
	}
	if v == nil {
		return out
	}
	if len(v) != 3 {
		r.keep(fmt.Errorf("%w: %s must have 3 elements, got %d", pipeline.ErrParamType, key, len(v)))
		return out
	}
	copy(out[:], v)
	return out
}

// pair reads a 2-element numeric list. ok is false when the key is absent.
func (r *reader) pair(key string) (x, y float64, ok bool) {
	v, err := r.params.Floats(key, nil)
	if err != nil {
		r.keep(err)
		return 0, 0, false
	}
	if v == nil {
		return 0, 0, false
	}
	if len(v) != 2 {
		r.keep(fmt.Errorf("%w: %s must have 2 elements, got %d", pipeline.ErrParamType, key, len(v)))
		return 0, 0, false
	}
	return v[0], v[1], true
}

func (r *reader) points(key string) [][2]float64 {
	v, err := r.params.Points(key)
	r.keep(err)
	return v
}

func (r *reader) triples(key string) [][3]float64 {
	v, err := r.params.Triples(key)
	r.keep(err)
	return v
}

// positive records an error when v is not > 0.
func (r *reader) positive(key string, v float64) {
	if v <= 0 {
		r.keep(fmt.Errorf("%w: %s must be positive, got %v", pipeline.ErrParamType, key, v))
	}
}

// nrgba adapts a filter returning *image.NRGBA to the transform signature.
func nrgba(fn func(image.Image) *image.NRGBA) transform {
	return func(img image.Image) (image.Image, error) {
		return fn(img), nil
	}
}

// center converts an optional [x, y] parameter to pixel coordinates,
// defaulting to the image center.
func center(img image.Image, x, y float64, set bool) (int, int) {
	if set {
		return int(x), int(y)
	}
	b := img.Bounds()
	return b.Dx() / 2, b.Dy() / 2
}

// catalog lists every built-in operation.
//
// Parameter names follow the filter argument names; omitted parameters take
// the listed defaults.
var catalog = []*Operation{
	{
		Name:        "white_balance",
		Description: "Shift temperature (red/blue) and tint (green)",
		Params: []Param{
			{"temperature", 0.0, "-1 (cooler) to 1 (warmer)"},
			{"tint", 0.0, "-1 to 1, positive boosts green"},
		},
		bind: func(r *reader) transform {
			temp, tint := r.float("temperature", 0), r.float("tint", 0)
			return nrgba(func(img image.Image) *image.NRGBA { return AdjustWhiteBalance(img, temp, tint) })
		},
	},
	{
		Name:        "exposure",
		Description: "Scale brightness by 2^exposure",
		Params:      []Param{{"exposure", 0.0, "stops, -2 to 2"}},
		bind: func(r *reader) transform {
			stops := r.float("exposure", 0)
			return nrgba(func(img image.Image) *image.NRGBA { return AdjustExposure(img, stops) })
		},
	},
	{
		Name:        "contrast",
		Description: "Scale contrast",
		Params:      []Param{{"contrast", 1.0, "0 = gray, 1 = unchanged"}},
		bind: func(r *reader) transform {
			f := r.float("contrast", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return AdjustContrast(img, f) })
		},
	},
	{
		Name:        "saturation",
		Description: "Scale color saturation",
		Params:      []Param{{"saturation", 1.0, "0 = grayscale, 1 = unchanged"}},
		bind: func(r *reader) transform {
			f := r.float("saturation", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return AdjustSaturation(img, f) })
		},
	},
	{
		Name:        "hsl",
		Description: "Rotate hue and shift saturation and lightness",
		Params: []Param{
			{"hue", 0.0, "degrees, -180 to 180"},
			{"saturation", 0.0, "-1 to 1"},
			{"lightness", 0.0, "-1 to 1"},
		},
		bind: func(r *reader) transform {
			h, s, l := r.float("hue", 0), r.float("saturation", 0), r.float("lightness", 0)
			return nrgba(func(img image.Image) *image.NRGBA { return AdjustHSL(img, h, s, l) })
		},
	},
	{
		Name:        "curves",
		Description: "Apply a tone curve",
		Params:      []Param{{"curve_points", nil, "list of [input, output] pairs sorted by input"}},
		bind: func(r *reader) transform {
			pts := r.points("curve_points")
			return nrgba(func(img image.Image) *image.NRGBA { return ApplyCurves(img, pts) })
		},
	},
	{
		Name:        "gaussian_blur",
		Description: "Gaussian blur",
		Params:      []Param{{"radius", 2.0, "blur radius"}},
		bind: func(r *reader) transform {
			radius := r.float("radius", 2)
			return nrgba(func(img image.Image) *image.NRGBA { return GaussianBlur(img, radius) })
		},
	},
	{
		Name:        "depth_of_field",
		Description: "Blur with distance from a focus point",
		Params: []Param{
			{"focus_point", nil, "[x, y] in pixels, default image center"},
			{"focus_range", 0.3, "sharp range, 0-1 of the diagonal"},
			{"max_blur", 5.0, "blur radius far from focus"},
		},
		bind: func(r *reader) transform {
			fx, fy, set := r.pair("focus_point")
			rng, maxBlur := r.float("focus_range", 0.3), r.float("max_blur", 5)
			return nrgba(func(img image.Image) *image.NRGBA {
				x, y := center(img, fx, fy, set)
				return DepthOfField(img, x, y, rng, maxBlur)
			})
		},
	},
	{
		Name:        "radial_blur",
		Description: "Zoom blur around a center point",
		Params: []Param{
			{"center", nil, "[x, y] in pixels, default image center"},
			{"strength", 0.1, "0-1"},
		},
		bind: func(r *reader) transform {
			cx, cy, set := r.pair("center")
			strength := r.float("strength", 0.1)
			return nrgba(func(img image.Image) *image.NRGBA {
				x, y := center(img, cx, cy, set)
				return RadialBlur(img, x, y, strength)
			})
		},
	},
	{
		Name:        "tilt_shift",
		Description: "Miniature effect with a sharp horizontal band",
		Params: []Param{
			{"focus_line_y", 0.5, "band center, 0-1 of height"},
			{"focus_width", 0.2, "band height, 0-1 of height"},
			{"max_blur", 5.0, "blur radius at the edges"},
		},
		bind: func(r *reader) transform {
			line, width, maxBlur := r.float("focus_line_y", 0.5), r.float("focus_width", 0.2), r.float("max_blur", 5)
			return nrgba(func(img image.Image) *image.NRGBA { return TiltShift(img, line, width, maxBlur) })
		},
	},
	{
		Name:        "sharpen",
		Description: "Unsharp mask",
		Params:      []Param{{"strength", 1.0, "0-3"}},
		bind: func(r *reader) transform {
			s := r.float("strength", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return Sharpen(img, s) })
		},
	},
	{
		Name:        "vignette",
		Description: "Darken towards the edges",
		Params: []Param{
			{"strength", 0.5, "0-1"},
			{"center", nil, "[x, y] as fractions of the size, default [0.5, 0.5]"},
		},
		bind: func(r *reader) transform {
			s := r.float("strength", 0.5)
			cx, cy, set := r.pair("center")
			if !set {
				cx, cy = 0.5, 0.5
			}
			return nrgba(func(img image.Image) *image.NRGBA { return Vignette(img, s, cx, cy) })
		},
	},
	{
		Name:        "chromatic_aberration",
		Description: "Offset red and blue channels",
		Params:      []Param{{"strength", 2.0, "offset in pixels"}},
		bind: func(r *reader) transform {
			s := r.float("strength", 2)
			return nrgba(func(img image.Image) *image.NRGBA { return ChromaticAberration(img, s) })
		},
	},
	{
		Name:        "lens_distortion",
		Description: "Barrel (negative) or pincushion (positive) distortion",
		Params:      []Param{{"distortion", 0.0, "-1 to 1"}},
		bind: func(r *reader) transform {
			d := r.float("distortion", 0)
			return nrgba(func(img image.Image) *image.NRGBA { return LensDistortion(img, d) })
		},
	},
	{
		Name:        "bokeh",
		Description: "Blur with brightened highlights",
		Params:      []Param{{"blur_amount", 5.0, "blur radius"}},
		bind: func(r *reader) transform {
			b := r.float("blur_amount", 5)
			return nrgba(func(img image.Image) *image.NRGBA { return Bokeh(img, b) })
		},
	},
	{
		Name:        "aperture",
		Description: "Blur as a lens at the given f-stop would",
		Params:      []Param{{"f_stop", 2.8, "positive f-number"}},
		bind: func(r *reader) transform {
			f := r.float("f_stop", 2.8)
			r.positive("f_stop", f)
			return nrgba(func(img image.Image) *image.NRGBA { return SimulateAperture(img, f) })
		},
	},
	{
		Name:        "denoise",
		Description: "Gaussian noise reduction",
		Params:      []Param{{"strength", 1.0, "0-3"}},
		bind: func(r *reader) transform {
			s := r.float("strength", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return Denoise(img, s) })
		},
	},
	{
		Name:        "enhance_details",
		Description: "Boost fine texture",
		Params:      []Param{{"strength", 1.0, "0-3"}},
		bind: func(r *reader) transform {
			s := r.float("strength", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return EnhanceDetails(img, s) })
		},
	},
	{
		Name:        "grain",
		Description: "Film grain",
		Params: []Param{
			{"intensity", 0.1, "0-1"},
			{"size", 1.0, "grain size, 0.5-3"},
			{"seed", 1, "noise seed"},
		},
		bind: func(r *reader) transform {
			i, s, seed := r.float("intensity", 0.1), r.float("size", 1), r.int64("seed", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return Grain(img, i, s, seed) })
		},
	},
	{
		Name:        "smooth_skin",
		Description: "Portrait skin smoothing",
		Params:      []Param{{"smoothness", 0.5, "0-1"}},
		bind: func(r *reader) transform {
			s := r.float("smoothness", 0.5)
			return nrgba(func(img image.Image) *image.NRGBA { return SmoothSkin(img, s) })
		},
	},
	{
		Name:        "texture_frequency",
		Description: "Scale low and high frequency texture",
		Params: []Param{
			{"low_freq", 1.0, "0-2"},
			{"high_freq", 1.0, "0-2"},
		},
		bind: func(r *reader) transform {
			lo, hi := r.float("low_freq", 1), r.float("high_freq", 1)
			return nrgba(func(img image.Image) *image.NRGBA { return TextureFrequency(img, lo, hi) })
		},
	},
	{
		Name:        "clarity",
		Description: "Midtone local contrast",
		Params:      []Param{{"amount", 0.5, "0-2"}},
		bind: func(r *reader) transform {
			a := r.float("amount", 0.5)
			return nrgba(func(img image.Image) *image.NRGBA { return Clarity(img, a) })
		},
	},
	{
		Name:        "color_grade",
		Description: "RGB offsets for shadows, midtones and highlights",
		Params: []Param{
			{"shadows", nil, "[r, g, b], -50 to 50"},
			{"midtones", nil, "[r, g, b], -50 to 50"},
			{"highlights", nil, "[r, g, b], -50 to 50"},
		},
		bind: func(r *reader) transform {
			s, m, h := r.triple("shadows"), r.triple("midtones"), r.triple("highlights")
			return nrgba(func(img image.Image) *image.NRGBA { return ColorGrade(img, s, m, h) })
		},
	},
	{
		Name:        "lut",
		Description: "1D lookup table color grading",
		Params:      []Param{{"lut", nil, "list of [r, g, b] outputs spread over 0-255"}},
		bind: func(r *reader) transform {
			lut := r.triples("lut")
			return nrgba(func(img image.Image) *image.NRGBA { return ApplyLUT(img, lut) })
		},
	},
	{
		Name:        "crop",
		Description: "Crop to a rectangle or a named region",
		Params: []Param{
			{"x1", nil, "left, inclusive"},
			{"y1", nil, "top, inclusive"},
			{"x2", nil, "right, exclusive"},
			{"y2", nil, "bottom, exclusive"},
			{"region", nil, "named region instead of coordinates, e.g. center or top-left"},
		},
		bind: func(r *reader) transform {
			if region := r.string("region", ""); region != "" {
				return func(img image.Image) (image.Image, error) { return CropRegion(img, region) }
			}
			x1, y1 := r.int("x1", -1), r.int("y1", -1)
			x2, y2 := r.int("x2", -1), r.int("y2", -1)
			if r.err == nil && (x1 < 0 || y1 < 0 || x2 < 0 || y2 < 0) {
				r.keep(fmt.Errorf("%w: crop needs x1, y1, x2 and y2 or region", pipeline.ErrParamType))
			}
			return func(img image.Image) (image.Image, error) { return Crop(img, x1, y1, x2, y2) }
		},
	},
	{
		Name:        "resize",
		Description: "Resize with Lanczos resampling",
		Params: []Param{
			{"width", 0, "pixels, 0 keeps the aspect ratio"},
			{"height", 0, "pixels, 0 keeps the aspect ratio"},
		},
		bind: func(r *reader) transform {
			w, h := r.int("width", 0), r.int("height", 0)
			return func(img image.Image) (image.Image, error) { return Resize(img, w, h) }
		},
	},
}

// Operations returns the built-in operations sorted by name.
func Operations() []*Operation {
	out := make([]*Operation, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the built-in operation registered under name.
func Lookup(name string) (*Operation, bool) {
	for _, op := range catalog {
		if op.Name == name {
			return op, true
		}
	}
	return nil, false
}

// Registry returns a new registry holding every built-in operation. Callers
// may add their own entries to the returned map.
func Registry() pipeline.Registry {
	reg := make(pipeline.Registry, len(catalog))
	for _, op := range catalog {
		reg[op.Name] = op
	}
	return reg
}
