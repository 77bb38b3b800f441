package filters

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates a uniformly colored test image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientImage creates an image whose pixels mostly differ.
func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 9), uint8(y * 7), uint8((x + y) * 3), 255})
		}
	}
	return img
}

func rgbAt(img image.Image, x, y int) [3]int {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
}

func near(got, want [3]int, tol int) bool {
	for i := range got {
		d := got[i] - want[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

func samePixels(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	for y := 0; y < a.Bounds().Dy(); y++ {
		for x := 0; x < a.Bounds().Dx(); x++ {
			if rgbAt(a, a.Bounds().Min.X+x, a.Bounds().Min.Y+y) != rgbAt(b, b.Bounds().Min.X+x, b.Bounds().Min.Y+y) {
				return false
			}
		}
	}
	return true
}

func TestColorFilters_Identity(t *testing.T) {
	src := createGradientImage(20, 20)

	tests := []struct {
		name string
		fn   func(image.Image) *image.NRGBA
	}{
		{"white balance", func(img image.Image) *image.NRGBA { return AdjustWhiteBalance(img, 0, 0) }},
		{"exposure", func(img image.Image) *image.NRGBA { return AdjustExposure(img, 0) }},
		{"contrast", func(img image.Image) *image.NRGBA { return AdjustContrast(img, 1) }},
		{"saturation", func(img image.Image) *image.NRGBA { return AdjustSaturation(img, 1) }},
		{"hsl", func(img image.Image) *image.NRGBA { return AdjustHSL(img, 0, 0, 0) }},
		{"curves", func(img image.Image) *image.NRGBA { return ApplyCurves(img, nil) }},
		{"color grade", func(img image.Image) *image.NRGBA { return ColorGrade(img, [3]float64{}, [3]float64{}, [3]float64{}) }},
		{"lut", func(img image.Image) *image.NRGBA { return ApplyLUT(img, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn(src)
			if !samePixels(out, src) {
				t.Error("neutral parameters changed the image")
			}
			if out == nil || &out.Pix[0] == &src.Pix[0] {
				t.Error("result must be a new image")
			}
		})
	}
}

func TestAdjustWhiteBalance(t *testing.T) {
	src := createInMemoryImage(4, 4, color.RGBA{100, 100, 100, 255})

	tests := []struct {
		name        string
		temperature float64
		tint        float64
		want        [3]int
	}{
		// 100*1.3, 100/1.3 truncated
		{"warm", 1, 0, [3]int{130, 100, 76}},
		{"tint", 0, 1, [3]int{100, 130, 100}},
		{"cool", -1, 0, [3]int{70, 100, 142}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rgbAt(AdjustWhiteBalance(src, tt.temperature, tt.tint), 0, 0)
			if !near(got, tt.want, 1) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdjustExposure(t *testing.T) {
	src := createInMemoryImage(2, 2, color.RGBA{100, 200, 20, 255})

	if got := rgbAt(AdjustExposure(src, 1), 0, 0); got != [3]int{200, 255, 40} {
		t.Errorf("+1 stop: got %v, want [200 255 40]", got)
	}
	if got := rgbAt(AdjustExposure(src, -1), 0, 0); got != [3]int{50, 100, 10} {
		t.Errorf("-1 stop: got %v, want [50 100 10]", got)
	}
}

func TestAdjustSaturation_Grayscale(t *testing.T) {
	src := createInMemoryImage(2, 2, color.RGBA{200, 50, 50, 255})

	got := rgbAt(AdjustSaturation(src, 0), 0, 0)
	if got[0] != got[1] || got[1] != got[2] {
		t.Errorf("saturation 0: got %v, want a gray", got)
	}
}

func TestAdjustContrast_Flat(t *testing.T) {
	src := createGradientImage(10, 10)

	out := AdjustContrast(src, 0)
	first := rgbAt(out, 0, 0)
	if !near(rgbAt(out, 9, 9), first, 1) || !near(first, [3]int{127, 127, 127}, 1) {
		t.Errorf("contrast 0: got %v and %v, want flat mid gray", first, rgbAt(out, 9, 9))
	}
}

func TestAdjustHSL(t *testing.T) {
	src := createInMemoryImage(2, 2, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name                   string
		hue, saturation, light float64
		want                   [3]int
	}{
		{"rotate to green", 120, 0, 0, [3]int{0, 255, 0}},
		{"rotate negative", -120, 0, 0, [3]int{0, 0, 255}},
		{"desaturate", 0, -1, 0, [3]int{128, 128, 128}},
		{"to white", 0, 0, 1, [3]int{255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rgbAt(AdjustHSL(src, tt.hue, tt.saturation, tt.light), 0, 0)
			if !near(got, tt.want, 1) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyCurves(t *testing.T) {
	src := createInMemoryImage(2, 2, color.RGBA{100, 0, 255, 255})

	invert := ApplyCurves(src, [][2]float64{{0, 255}, {255, 0}})
	if got := rgbAt(invert, 0, 0); !near(got, [3]int{155, 255, 0}, 1) {
		t.Errorf("invert: got %v, want ~[155 255 0]", got)
	}

	// Only 0..128 is covered; 255 stays as-is
	partial := ApplyCurves(src, [][2]float64{{0, 0}, {128, 64}})
	if got := rgbAt(partial, 0, 0); !near(got, [3]int{50, 0, 255}, 1) {
		t.Errorf("partial: got %v, want ~[50 0 255]", got)
	}
}

func TestColorGrade(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 255, 255, 255})

	out := ColorGrade(img, [3]float64{10, 20, 30}, [3]float64{}, [3]float64{-50, 0, 0})

	if got := rgbAt(out, 0, 0); got != [3]int{10, 20, 30} {
		t.Errorf("shadow: got %v, want [10 20 30]", got)
	}
	if got := rgbAt(out, 1, 0); got != [3]int{205, 255, 255} {
		t.Errorf("highlight: got %v, want [205 255 255]", got)
	}
}

func TestApplyLUT(t *testing.T) {
	lut := make([][3]float64, 256)
	for i := range lut {
		lut[i] = [3]float64{float64(i), 0, 255}
	}
	src := createInMemoryImage(2, 2, color.RGBA{77, 200, 10, 255})

	if got := rgbAt(ApplyLUT(src, lut), 1, 1); got != [3]int{77, 0, 255} {
		t.Errorf("got %v, want [77 0 255]", got)
	}

	// Two entries interpolate across the range
	ramp := [][3]float64{{255, 255, 255}, {0, 0, 0}}
	if got := rgbAt(ApplyLUT(src, ramp), 0, 0); !near(got, [3]int{178, 55, 245}, 1) {
		t.Errorf("ramp: got %v, want ~[178 55 245]", got)
	}
}
