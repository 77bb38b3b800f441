package presets

import (
	"github.com/ironsheep/visionflow/internal/pipeline"
	"github.com/ironsheep/visionflow/internal/styles"
)

// CustomName is the name of pipelines built from Adjustments.
const CustomName = "Custom Processing"

// Adjustments are one-shot edits. A zero field is skipped.
type Adjustments struct {
	Temperature    float64 `json:"temperature,omitempty"`
	Tint           float64 `json:"tint,omitempty"`
	Exposure       float64 `json:"exposure,omitempty"`
	Contrast       float64 `json:"contrast,omitempty"`
	Saturation     float64 `json:"saturation,omitempty"`
	Blur           float64 `json:"blur,omitempty"`
	Sharpen        float64 `json:"sharpen,omitempty"`
	Vignette       float64 `json:"vignette,omitempty"`
	Denoise        float64 `json:"denoise,omitempty"`
	Grain          float64 `json:"grain,omitempty"`
	Clarity        float64 `json:"clarity,omitempty"`
	Style          string  `json:"style,omitempty"`
	StyleIntensity float64 `json:"style_intensity,omitempty"`
}

// Pipeline builds the adjustments into a pipeline in a fixed order: white
// balance, exposure, contrast, saturation, blur, sharpen, vignette, denoise,
// grain, clarity and finally the style. creator resolves Style and may be nil
// when no style is set.
func (a Adjustments) Pipeline(creator *styles.Creator) (*pipeline.Pipeline, error) {
	p := pipeline.New(CustomName)

	if a.Temperature != 0 || a.Tint != 0 {
		add(p, "white_balance", pipeline.Params{"temperature": a.Temperature, "tint": a.Tint})
	}
	optional := []struct {
		value float64
		op    string
		param string
	}{
		{a.Exposure, "exposure", "exposure"},
		{a.Contrast, "contrast", "contrast"},
		{a.Saturation, "saturation", "saturation"},
		{a.Blur, "gaussian_blur", "radius"},
		{a.Sharpen, "sharpen", "strength"},
		{a.Vignette, "vignette", "strength"},
		{a.Denoise, "denoise", "strength"},
		{a.Grain, "grain", "intensity"},
		{a.Clarity, "clarity", "amount"},
	}
	for _, o := range optional {
		if o.value != 0 {
			add(p, o.op, pipeline.Params{o.param: o.value})
		}
	}

	if a.Style != "" {
		if creator == nil {
			creator = styles.NewCreator()
		}
		intensity := a.StyleIntensity
		if intensity == 0 {
			intensity = 1
		}
		p.AddOperation(styles.OperationName, creator.Operation(), pipeline.Params{"style": a.Style, "intensity": intensity})
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return p, nil
}
