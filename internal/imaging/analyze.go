package imaging

import (
	"image"
	"math"
	"os"
)

// BrightnessStats summarizes 8-bit channel values over all pixels and all
// three color channels.
type BrightnessStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"` // population standard deviation
	Min  int     `json:"min"`
	Max  int     `json:"max"`
}

// ChannelStats describes a single color channel.
type ChannelStats struct {
	Mean      float64  `json:"mean"`
	Std       float64  `json:"std"`
	Histogram [256]int `json:"histogram"`
}

// Dimensions holds image size information.
type Dimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Analysis is the technical analysis of an image.
type Analysis struct {
	Dimensions Dimensions              `json:"dimensions"`
	ColorSpace string                  `json:"color_space"`
	Format     string                  `json:"format,omitempty"`
	FileSize   string                  `json:"file_size,omitempty"`
	Brightness BrightnessStats         `json:"brightness"`
	Channels   map[string]ChannelStats `json:"channels"`
	Sharpness  float64                 `json:"sharpness"`
	Palette    []ColorFrequency        `json:"palette"`
	EXIF       map[string]string       `json:"exif,omitempty"`
}

// channelNames lists RGB channels in pixel order.
var channelNames = [3]string{"red", "green", "blue"}

// Brightness computes mean, population standard deviation, minimum and
// maximum over every color channel of every pixel. Alpha is ignored.
func Brightness(img image.Image) BrightnessStats {
	src := ToRGB(img)
	var sum, sumSq float64
	lo, hi := 255, 0
	n := 0

	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := int(src.Pix[i+c])
			f := float64(v)
			sum += f
			sumSq += f * f
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			n++
		}
	}
	if n == 0 {
		return BrightnessStats{}
	}

	mean := sum / float64(n)
	return BrightnessStats{
		Mean: mean,
		Std:  math.Sqrt(math.Max(sumSq/float64(n)-mean*mean, 0)),
		Min:  lo,
		Max:  hi,
	}
}

// Analyze computes the technical properties of img: dimensions, brightness,
// per-channel statistics and histograms, sharpness and dominant colors.
func Analyze(img image.Image) *Analysis {
	src := ToRGB(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	a := &Analysis{
		Dimensions: Dimensions{Width: w, Height: h},
		ColorSpace: "RGB",
		Brightness: Brightness(src),
		Channels:   make(map[string]ChannelStats, 3),
		Sharpness:  Sharpness(src),
	}
	if h > 0 {
		a.Dimensions.AspectRatio = float64(w) / float64(h)
	}

	var hist [3][256]int
	var sum, sumSq [3]float64
	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := src.Pix[i+c]
			hist[c][v]++
			sum[c] += float64(v)
			sumSq[c] += float64(v) * float64(v)
		}
	}
	pixels := float64(w * h)
	for c, name := range channelNames {
		var mean, std float64
		if pixels > 0 {
			mean = sum[c] / pixels
			std = math.Sqrt(math.Max(sumSq[c]/pixels-mean*mean, 0))
		}
		a.Channels[name] = ChannelStats{Mean: mean, Std: std, Histogram: hist[c]}
	}

	if palette, err := DominantColors(src, 5, nil); err == nil {
		a.Palette = palette.Colors
	}

	return a
}

// AnalyzeFile loads path through cache and analyzes it, adding file format,
// size and EXIF tags. Missing or unreadable EXIF data is not an error.
func AnalyzeFile(cache *ImageCache, path string) (*Analysis, error) {
	info, err := LoadImageInfo(cache, path)
	if err != nil {
		return nil, err
	}
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	a := Analyze(img)
	a.Format = info.Format
	a.FileSize = info.FileSize

	if f, err := os.Open(path); err == nil {
		a.EXIF = ReadEXIF(f)
		f.Close()
	}
	return a, nil
}
