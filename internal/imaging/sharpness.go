package imaging

import (
	"image"
)

// Sharpness estimates image sharpness as the variance of the Laplacian of the
// grayscale image. Higher values indicate more fine detail; a uniform image
// scores 0.
//
// # Algorithm
//
//  1. Grayscale conversion: mean of the R, G and B channels (0-255 scale)
//
//  2. Laplacian: 3x3 kernel
//
//     0  1  0
//     1 -4  1
//     0  1  0
//
//     Border pixels use clamped (replicated) edge values.
//
//  3. Population variance of the Laplacian response.
func Sharpness(img image.Image) float64 {
	src := ToRGB(img)
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()
	if width == 0 || height == 0 {
		return 0
	}

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			i := y*src.Stride + x*4
			gray[y][x] = (float64(src.Pix[i]) + float64(src.Pix[i+1]) + float64(src.Pix[i+2])) / 3
		}
	}

	kernel := [3][3]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}

	var sum, sumSq float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v += gray[py][px] * kernel[ky+1][kx+1]
				}
			}
			sum += v
			sumSq += v * v
		}
	}

	n := float64(width * height)
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		return 0
	}
	return variance
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
