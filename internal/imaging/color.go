package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult describes one sampled pixel, together with how far it is from
// each background key. It is used to pick a matting seed and tolerance.
type ColorResult struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Hex  string    `json:"hex"` // "#RRGGBB", alpha excluded
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`

	// KeyDistances maps each key color name to the Euclidean RGB distance
	// from this sample.
	KeyDistances map[string]float64 `json:"key_distances"`

	// NearestKey is the key color with the smallest distance.
	NearestKey string `json:"nearest_key"`
}

// SampleColor reads the color at (x, y).
//
// Returns ErrOutOfBounds if the coordinates are outside the image.
func SampleColor(img *image.NRGBA, x, y int) (*ColorResult, error) {
	b := img.Bounds()
	if !inBounds(x, y, b.Dx(), b.Dy()) {
		return nil, errors.Wrapf(ErrOutOfBounds, "sample (%d,%d) in %dx%d image", x, y, b.Dx(), b.Dy())
	}

	c := nrgbaAt(img, x, y)
	cf := toColorful(c)
	h, s, l := cf.Hsl()

	result := &ColorResult{
		X:            x,
		Y:            y,
		Hex:          fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGBA:         RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:          HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
		KeyDistances: make(map[string]float64, len(keyColorNames)),
	}
	result.NearestKey = nearestKey(cf, result.KeyDistances).String()
	return result, nil
}

// nearestKey returns the key color closest to c, recording every distance.
func nearestKey(c colorful.Color, distances map[string]float64) KeyColor {
	best, bestDist := KeyWhite, math.MaxFloat64
	for _, k := range []KeyColor{KeyWhite, KeyGreen, KeyBlack} {
		d := rgbDistance(c, toColorful(k.Color()))
		if distances != nil {
			distances[k.String()] = math.Round(d*10) / 10
		}
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// ColorFrequency represents a quantized color and its share of the sampled
// pixels.
type ColorFrequency struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// BackgroundGuess is the result of SuggestKey.
type BackgroundGuess struct {
	// Key is the key color nearest to the dominant border color.
	Key string `json:"key"`

	// Border lists the most common border colors, most frequent first.
	Border []ColorFrequency `json:"border"`

	// Seed is a border pixel of the dominant color, suitable for a global or
	// contiguous matte.
	Seed image.Point `json:"seed"`
}

// SuggestKey guesses the background key of a freshly generated image.
//
// Generated assets place the subject in the middle, so the outermost ring
// of pixels is assumed to be background. Border colors are quantized
// (each channel rounded down to a multiple of 16) and counted; the most
// frequent bucket decides the key. Fully transparent border pixels are
// ignored. The border is scanned top row, bottom row, then the sides top
// to bottom, and Seed is the first pixel of the winning bucket in that
// order. An image whose border is entirely transparent returns
// ErrNoContent, since there is nothing left to matte.
func SuggestKey(img *image.NRGBA, count int) (*BackgroundGuess, error) {
	if count < 1 {
		count = 1
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	type bucket struct {
		n    int
		seed image.Point
		c    colorful.Color
	}
	buckets := make(map[string]*bucket)
	total := 0

	visit := func(x, y int) {
		c := nrgbaAt(img, x, y)
		if c.A == 0 {
			return
		}
		q := c
		q.R, q.G, q.B = c.R/16*16, c.G/16*16, c.B/16*16
		key := fmt.Sprintf("#%02X%02X%02X", q.R, q.G, q.B)
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{seed: image.Pt(x, y), c: toColorful(c)}
			buckets[key] = bk
		}
		bk.n++
		total++
	}
	for x := 0; x < w; x++ {
		visit(x, 0)
	}
	if h > 1 {
		for x := 0; x < w; x++ {
			visit(x, h-1)
		}
	}
	for y := 1; y < h-1; y++ {
		visit(0, y)
		if w > 1 {
			visit(w-1, y)
		}
	}
	if total == 0 {
		return nil, errors.Wrap(ErrNoContent, "image border is fully transparent")
	}

	colors := make([]ColorFrequency, 0, len(buckets))
	for hex, bk := range buckets {
		colors = append(colors, ColorFrequency{
			Hex:        hex,
			Percentage: float64(bk.n) / float64(total) * 100,
		})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	top := buckets[colors[0].Hex]
	if len(colors) > count {
		colors = colors[:count]
	}
	return &BackgroundGuess{
		Key:    nearestKey(top.c, nil).String(),
		Border: colors,
		Seed:   top.seed,
	}, nil
}
