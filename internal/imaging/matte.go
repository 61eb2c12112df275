package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/pkg/errors"
)

// DefaultToleranceScale converts the 1-100 tolerance scale into the
// Euclidean RGB distance domain (0 to ~441).
const DefaultToleranceScale = 2.5

// Preset thresholds used by StrategyPreset.
const (
	// WhiteKeyCutoff: a pixel is white background when every channel exceeds it.
	WhiteKeyCutoff = 220

	// BlackKeyCutoff: a pixel is black background when every channel is below it.
	BlackKeyCutoff = 40

	// GreenKeyFloor: the green channel must exceed this for a green-key match.
	GreenKeyFloor = 100

	// GreenKeyMargin: green must exceed red and blue by this factor.
	GreenKeyMargin = 1.1
)

// KeyColor selects which background color a matte removes.
type KeyColor int

const (
	KeyWhite KeyColor = iota + 1
	KeyGreen
	KeyBlack
)

var keyColorNames = map[KeyColor]string{
	KeyWhite: "white",
	KeyGreen: "green",
	KeyBlack: "black",
}

// String returns the lower-case key name.
func (k KeyColor) String() string {
	if name, ok := keyColorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyColor(%d)", int(k))
}

// Color returns the nominal key color used as the global target when no seed
// is given.
func (k KeyColor) Color() color.NRGBA {
	switch k {
	case KeyWhite:
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	case KeyGreen:
		return color.NRGBA{G: 255, A: 255}
	default:
		return color.NRGBA{A: 255}
	}
}

// ParseKeyColor parses "white", "green" or "black".
func ParseKeyColor(s string) (KeyColor, error) {
	for k, name := range keyColorNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "key color %q", s)
}

// MatteStrategy selects how background pixels are found.
type MatteStrategy int

const (
	// StrategyPreset thresholds every pixel with a key-specific heuristic.
	StrategyPreset MatteStrategy = iota + 1

	// StrategyGlobal removes every pixel within tolerance of the target color.
	StrategyGlobal

	// StrategyContiguous flood-fills from the seed through matching pixels.
	StrategyContiguous
)

var strategyNames = map[MatteStrategy]string{
	StrategyPreset:     "preset",
	StrategyGlobal:     "global",
	StrategyContiguous: "contiguous",
}

// String returns the lower-case strategy name.
func (s MatteStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("MatteStrategy(%d)", int(s))
}

// ParseMatteStrategy parses "preset", "global" or "contiguous".
func ParseMatteStrategy(s string) (MatteStrategy, error) {
	for st, name := range strategyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return st, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "matte strategy %q", s)
}

// MatteOptions configures Matte.
type MatteOptions struct {
	// Key is the background key color.
	Key KeyColor

	// Strategy selects preset thresholds, global distance or flood fill.
	Strategy MatteStrategy

	// Seed is the sampled background pixel. Optional; contiguous matting
	// starts at (0,0) when it is nil.
	Seed *image.Point

	// Tolerance is on the 1-100 user scale. Values outside are clamped.
	Tolerance int

	// ToleranceScale multiplies Tolerance into an RGB distance.
	// Zero means DefaultToleranceScale.
	ToleranceScale float64
}

// Threshold returns the Euclidean RGB distance below which a pixel matches.
func (o MatteOptions) Threshold() float64 {
	tol := o.Tolerance
	if tol < 1 {
		tol = 1
	}
	if tol > 100 {
		tol = 100
	}
	scale := o.ToleranceScale
	if scale <= 0 {
		scale = DefaultToleranceScale
	}
	return float64(tol) * scale
}

// Matte removes the background of an image by zeroing the alpha of pixels
// classified as background. RGB values are never modified, and pixels that
// are already fully transparent are never touched.
//
// Parameters:
//   - src: Source image. It is not modified.
//   - opts: Key color, strategy, optional seed and tolerance.
//
// Returns:
//   - *image.NRGBA: A new buffer with background alpha set to 0.
//   - error: ErrUnsupportedMode for unknown key/strategy, ErrOutOfBounds for
//     a seed outside the image, ErrDegenerateGeometry for an empty image.
//
// # Strategies
//
//   - Preset: white removes pixels whose channels are all > 220, black
//     removes pixels whose channels are all < 40, green removes pixels with
//     G > 100 and G > 1.1*R and G > 1.1*B.
//   - Global: removes every pixel closer than Threshold() to the target,
//     where the target is the seed color if a seed is given, otherwise the
//     key color.
//   - Contiguous: breadth-first flood fill from the seed over 4-connected
//     non-transparent pixels closer than Threshold() to the seed color.
//
// If the seed pixel is already transparent the image is returned unchanged.
func Matte(src image.Image, opts MatteOptions) (*image.NRGBA, error) {
	if _, ok := keyColorNames[opts.Key]; !ok {
		return nil, errors.Wrapf(ErrUnsupportedMode, "key color %d", int(opts.Key))
	}

	dst, err := ownedCopy(src)
	if err != nil {
		return nil, err
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	if opts.Seed != nil {
		if !inBounds(opts.Seed.X, opts.Seed.Y, w, h) {
			return nil, errors.Wrapf(ErrOutOfBounds, "seed (%d,%d) in %dx%d image", opts.Seed.X, opts.Seed.Y, w, h)
		}
		if alphaAt(dst, opts.Seed.X, opts.Seed.Y) == 0 {
			return dst, nil
		}
	}

	switch opts.Strategy {
	case StrategyPreset:
		mattePreset(dst, opts.Key)
	case StrategyGlobal:
		target := opts.Key.Color()
		if opts.Seed != nil {
			target = nrgbaAt(dst, opts.Seed.X, opts.Seed.Y)
		}
		matteGlobal(dst, target, opts.Threshold())
	case StrategyContiguous:
		seed := image.Point{}
		if opts.Seed != nil {
			seed = *opts.Seed
		} else if alphaAt(dst, 0, 0) == 0 {
			return dst, nil
		}
		matteContiguous(dst, seed, opts.Threshold())
	default:
		return nil, errors.Wrapf(ErrUnsupportedMode, "matte strategy %d", int(opts.Strategy))
	}

	return dst, nil
}

// mattePreset applies the key-specific luminance/chroma heuristic.
func mattePreset(img *image.NRGBA, key KeyColor) {
	var match func(r, g, b uint8) bool
	switch key {
	case KeyWhite:
		match = func(r, g, b uint8) bool {
			return r > WhiteKeyCutoff && g > WhiteKeyCutoff && b > WhiteKeyCutoff
		}
	case KeyBlack:
		match = func(r, g, b uint8) bool {
			return r < BlackKeyCutoff && g < BlackKeyCutoff && b < BlackKeyCutoff
		}
	default:
		match = func(r, g, b uint8) bool {
			gf := float64(g)
			return g > GreenKeyFloor && gf > float64(r)*GreenKeyMargin && gf > float64(b)*GreenKeyMargin
		}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			if p[3] == 0 {
				continue
			}
			if match(p[0], p[1], p[2]) {
				p[3] = 0
			}
		}
	}
}

// matteGlobal zeroes every non-transparent pixel within threshold of target.
func matteGlobal(img *image.NRGBA, target color.NRGBA, threshold float64) {
	tc := toColorful(target)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := nrgbaAt(img, x, y)
			if c.A == 0 {
				continue
			}
			if rgbDistance(toColorful(c), tc) < threshold {
				clearAlpha(img, x, y)
			}
		}
	}
}

// matteContiguous flood-fills from seed, zeroing each visited pixel.
//
// Uses a queue (breadth-first) rather than recursion so that large uniform
// backgrounds cannot overflow the stack. The visited set covers the whole
// buffer and each pixel is enqueued at most once.
func matteContiguous(img *image.NRGBA, seed image.Point, threshold float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tc := toColorful(nrgbaAt(img, seed.X, seed.Y))

	visited := make([]bool, w*h)
	queue := make([]int, 0, 1024)
	queue = append(queue, seed.Y*w+seed.X)
	visited[seed.Y*w+seed.X] = true

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w

		c := nrgbaAt(img, x, y)
		if c.A == 0 || rgbDistance(toColorful(c), tc) >= threshold {
			continue
		}
		clearAlpha(img, x, y)

		for _, d := range neighbors4 {
			nx, ny := x+d.X, y+d.Y
			if !inBounds(nx, ny, w, h) {
				continue
			}
			ni := ny*w + nx
			if visited[ni] {
				continue
			}
			visited[ni] = true
			queue = append(queue, ni)
		}
	}
}
