// Package presets builds ready-made pipelines for common workflows.
//
// Every step is a built-in filter operation registered under the same name in
// filters.Registry, so a saved preset loads back without losing steps.
package presets

import (
	"errors"
	"fmt"

	"github.com/ironsheep/visionflow/internal/filters"
	"github.com/ironsheep/visionflow/internal/pipeline"
)

// ErrUnknownPreset is returned by New for a name outside Names.
var ErrUnknownPreset = errors.New("unknown preset")

type factory struct {
	key   string
	build func() *pipeline.Pipeline
}

var factories = []factory{
	{"portrait", PortraitRetouch},
	{"landscape", LandscapeEnhancement},
	{"cinematic", CinematicLook},
}

// Names returns the short preset names accepted by New.
func Names() []string {
	out := make([]string, len(factories))
	for i, f := range factories {
		out[i] = f.key
	}
	return out
}

// New returns a fresh pipeline for the short preset name.
func New(name string) (*pipeline.Pipeline, error) {
	for _, f := range factories {
		if f.key == name {
			return f.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

// PortraitRetouch denoises, smooths skin, restores detail and lifts
// saturation slightly.
func PortraitRetouch() *pipeline.Pipeline {
	p := pipeline.New("Portrait Retouch")
	add(p, "denoise", pipeline.Params{"strength": 1.5})
	add(p, "smooth_skin", pipeline.Params{"smoothness": 0.4})
	add(p, "enhance_details", pipeline.Params{"strength": 0.5})
	add(p, "saturation", pipeline.Params{"saturation": 1.1})
	return p
}

// LandscapeEnhancement adds clarity, saturation, contrast and a light
// vignette.
func LandscapeEnhancement() *pipeline.Pipeline {
	p := pipeline.New("Landscape Enhancement")
	add(p, "clarity", pipeline.Params{"amount": 0.7})
	add(p, "saturation", pipeline.Params{"saturation": 1.2})
	add(p, "contrast", pipeline.Params{"contrast": 1.15})
	add(p, "vignette", pipeline.Params{"strength": 0.2})
	return p
}

// CinematicLook warms the image, raises contrast, mutes color and finishes
// with a vignette and fine grain.
func CinematicLook() *pipeline.Pipeline {
	p := pipeline.New("Cinematic Look")
	add(p, "white_balance", pipeline.Params{"temperature": 0.1, "tint": -0.05})
	add(p, "contrast", pipeline.Params{"contrast": 1.2})
	add(p, "saturation", pipeline.Params{"saturation": 0.9})
	add(p, "vignette", pipeline.Params{"strength": 0.3})
	add(p, "grain", pipeline.Params{"intensity": 0.05})
	return p
}

func add(p *pipeline.Pipeline, name string, params pipeline.Params) {
	op, ok := filters.Lookup(name)
	if !ok {
		panic("presets: no built-in operation " + name)
	}
	p.AddOperation(name, op, params)
}
