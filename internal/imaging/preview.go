package imaging

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPreviewColor outlines frames in a preview.
const DefaultPreviewColor = "#FF00FF"

var (
	previewWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	previewShade = color.NRGBA{A: 180}
)

// FramePreview draws every frame's bounds over a copy of the sheet and
// labels each with its index, for checking a slice before using the
// frames. colorHex is "#RRGGBB"; an invalid value uses DefaultPreviewColor.
func FramePreview(sheet image.Image, frames []Frame, colorHex string) (*image.NRGBA, error) {
	src, err := ownedCopy(sheet)
	if err != nil {
		return nil, err
	}
	outline, err := colorful.Hex(colorHex)
	if err != nil {
		outline = mustHex(DefaultPreviewColor)
	}

	dc := gg.NewContextForImage(src)
	dc.SetRGB(outline.R, outline.G, outline.B)
	dc.SetLineWidth(1)
	for _, f := range frames {
		b := f.Bounds
		dc.DrawRectangle(float64(b.Min.X)+0.5, float64(b.Min.Y)+0.5, float64(b.Dx()-1), float64(b.Dy()-1))
		dc.Stroke()
	}

	out := ownedNRGBA(dc.Image())
	for _, f := range frames {
		drawLabel(out, f.Bounds.Min.X+2, f.Bounds.Min.Y+2, strconv.Itoa(f.Index), previewWhite, previewShade)
	}
	return out, nil
}

func ownedNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	out, _ := ownedCopy(img)
	return out
}

// digitGlyphs is a 3x5 pixel font, enough for frame indices.
var digitGlyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel writes text at (x, y) on a filled background box. Pixels
// outside img are skipped.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	const charWidth, labelHeight = 4, 7
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	set := func(px, py int, c color.NRGBA) {
		if inBounds(px, py, w, h) {
			img.SetNRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if glyph, ok := digitGlyphs[ch]; ok {
			for row, line := range glyph {
				for col, bit := range line {
					if bit == '1' {
						set(cx+col, y+row, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
