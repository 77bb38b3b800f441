package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDominantColors(t *testing.T) {
	// Create an image with mostly red, some green
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 80 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255}) // 80% red
			} else {
				img.Set(x, y, color.RGBA{0, 255, 0, 255}) // 20% green
			}
		}
	}

	result, err := DominantColors(img, 5, nil)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 2 {
		t.Fatalf("colors: got %d, want 2", len(result.Colors))
	}

	first := result.Colors[0]
	if first.Percentage < 79.99 || first.Percentage > 80.01 {
		t.Errorf("percentage: got %f, want 80", first.Percentage)
	}
	// 255 quantizes to 240
	if first.Hex != "#f00000" {
		t.Errorf("hex: got %s, want #f00000", first.Hex)
	}
	if first.RGB != (RGBColor{R: 240}) {
		t.Errorf("rgb: got %v, want {240 0 0}", first.RGB)
	}
}

func TestDominantColors_WithRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	// Sample only the top-left quadrant (red)
	region := &Region{X1: 0, Y1: 0, X2: 50, Y2: 50}
	result, err := DominantColors(img, 5, region)
	if err != nil {
		t.Fatalf("DominantColors with region failed: %v", err)
	}

	if len(result.Colors) != 1 {
		t.Fatalf("colors: got %d, want 1", len(result.Colors))
	}
	if result.Colors[0].Percentage != 100 {
		t.Errorf("expected red to fill the region, got %f%%", result.Colors[0].Percentage)
	}
}

func TestDominantColors_Count(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 2, nil)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 2 {
		t.Errorf("colors: got %d, want 2", len(result.Colors))
	}
	// Equal quadrants are ordered by hex
	if result.Colors[0].Hex != "#0000f0" {
		t.Errorf("first: got %s, want #0000f0", result.Colors[0].Hex)
	}
}

func TestDominantColors_SingleColor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})

	result, err := DominantColors(img, 3, nil)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 1 {
		t.Errorf("expected 1 color for uniform image, got %d", len(result.Colors))
	}
	if result.Colors[0].Percentage != 100 {
		t.Errorf("expected 100%% for single color, got %f%%", result.Colors[0].Percentage)
	}
}

func TestToHSL(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantH   int
		wantS   int
		wantL   int
	}{
		{"red", 255, 0, 0, 0, 100, 50},
		{"green", 0, 255, 0, 120, 100, 50},
		{"blue", 0, 0, 255, 240, 100, 50},
		{"white", 255, 255, 255, 0, 0, 100},
		{"black", 0, 0, 0, 0, 0, 0},
		{"gray", 128, 128, 128, 0, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := colorful.MakeColor(color.RGBA{tt.r, tt.g, tt.b, 255})
			hsl := toHSL(c)

			// Allow some tolerance for rounding
			if abs(hsl.H-tt.wantH) > 1 {
				t.Errorf("H: got %d, want %d", hsl.H, tt.wantH)
			}
			if abs(hsl.S-tt.wantS) > 1 {
				t.Errorf("S: got %d, want %d", hsl.S, tt.wantS)
			}
			if abs(hsl.L-tt.wantL) > 1 {
				t.Errorf("L: got %d, want %d", hsl.L, tt.wantL)
			}
		})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
