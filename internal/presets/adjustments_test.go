package presets

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ironsheep/visionflow/internal/styles"
)

func TestAdjustments_Pipeline(t *testing.T) {
	tests := []struct {
		name string
		adj  Adjustments
		want []string
	}{
		{"empty", Adjustments{}, nil},
		{"tint only", Adjustments{Tint: 0.2}, []string{"white_balance"}},
		{
			"ordered",
			Adjustments{Clarity: 0.5, Blur: 2, Exposure: 0.3, Temperature: 0.1, Style: "soft"},
			[]string{"white_balance", "exposure", "gaussian_blur", "clarity", styles.OperationName},
		},
		{
			"everything",
			Adjustments{
				Temperature: 0.1, Exposure: 0.2, Contrast: 1.1, Saturation: 1.2, Blur: 1,
				Sharpen: 1, Vignette: 0.3, Denoise: 1, Grain: 0.1, Clarity: 0.4,
			},
			[]string{
				"white_balance", "exposure", "contrast", "saturation", "gaussian_blur",
				"sharpen", "vignette", "denoise", "grain", "clarity",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.adj.Pipeline(nil)
			if err != nil {
				t.Fatalf("Pipeline failed: %v", err)
			}
			if p.Name() != CustomName {
				t.Errorf("name: got %q, want %q", p.Name(), CustomName)
			}
			if got := opNames(p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("steps: got %v, want %v", got, tt.want)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestAdjustments_StyleIntensity(t *testing.T) {
	p, err := Adjustments{Style: "vintage"}.Pipeline(styles.NewCreator())
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}
	ops := p.Operations()
	if got := ops[0].Params["intensity"]; got != 1.0 {
		t.Errorf("default intensity: got %v, want 1", got)
	}

	p, _ = Adjustments{Style: "vintage", StyleIntensity: 0.4}.Pipeline(nil)
	if got := p.Operations()[0].Params["intensity"]; got != 0.4 {
		t.Errorf("intensity: got %v, want 0.4", got)
	}
}

func TestAdjustments_CustomStyle(t *testing.T) {
	c := styles.NewCreator()
	c.Define("faded", styles.Params{"contrast": 0.8})

	if _, err := (Adjustments{Style: "faded"}).Pipeline(c); err != nil {
		t.Errorf("custom style: %v", err)
	}
	_, err := Adjustments{Style: "faded"}.Pipeline(styles.NewCreator())
	if !errors.Is(err, styles.ErrUnknownStyle) {
		t.Errorf("got %v, want ErrUnknownStyle", err)
	}
}
