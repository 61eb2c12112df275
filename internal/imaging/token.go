package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Token geometry, in pixels relative to half the token side.
const (
	tokenClipInset      = 4
	tokenRingInset      = 10
	tokenRingWidth      = 12
	tokenHighlightInset = 16
	tokenRimInset       = 4

	// MinTokenSide is the smallest square side that still leaves a positive
	// clip radius.
	MinTokenSide = 2*tokenClipInset + 1
)

// Drop shadow parameters.
const (
	tokenShadowOpacity = 0.6
	tokenShadowSigma   = 5.0
	tokenShadowOffset  = 4
)

// tokenGradient is the gold-amber metallic ring, stops at 0, .25, .5, .75, 1.
var tokenGradient = []struct {
	offset float64
	color  colorful.Color
}{
	{0, mustHex("#FFD700")},
	{0.25, mustHex("#FFBF00")},
	{0.5, mustHex("#B8860B")},
	{0.75, mustHex("#FFBF00")},
	{1, mustHex("#FFD700")},
}

// MakeToken frames img as a circular tabletop token.
//
// The largest centered square is cropped, clipped to a circle and decorated
// with a gradient metallic ring, an inner highlight and an outer rim. The
// whole composite casts a soft offset drop shadow. The output is
// side x side, where side = min(width, height).
//
// Rendering is deterministic: the same input always encodes to the same PNG.
//
// Returns ErrDegenerateGeometry when side < MinTokenSide.
func MakeToken(img image.Image) (*image.NRGBA, error) {
	src, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}
	side := src.Bounds().Dx()
	if h := src.Bounds().Dy(); h < side {
		side = h
	}
	if side < MinTokenSide {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "token side %d, need at least %d", side, MinTokenSide)
	}

	square := imaging.CropCenter(src, side, side)
	layer := drawTokenLayer(square, side)
	shadow := tokenShadow(layer)

	out := imaging.New(side, side, color.NRGBA{})
	out = imaging.Overlay(out, shadow, image.Pt(tokenShadowOffset, tokenShadowOffset), 1.0)
	out = imaging.Overlay(out, layer, image.Pt(0, 0), 1.0)
	return out, nil
}

// drawTokenLayer draws the clipped portrait and its rings.
func drawTokenLayer(square image.Image, side int) *image.NRGBA {
	half := float64(side) / 2
	dc := gg.NewContext(side, side)

	dc.DrawCircle(half, half, half-tokenClipInset)
	dc.Clip()
	dc.DrawImage(square, 0, 0)
	dc.ResetClip()

	if r := half - tokenRingInset; r > 0 {
		grad := gg.NewLinearGradient(0, 0, float64(side), float64(side))
		for _, stop := range tokenGradient {
			grad.AddColorStop(stop.offset, stop.color)
		}
		dc.SetStrokeStyle(grad)
		dc.SetLineWidth(tokenRingWidth)
		dc.DrawCircle(half, half, r)
		dc.Stroke()
	}

	if r := half - tokenHighlightInset; r > 0 {
		dc.SetRGBA(1, 1, 1, 0.5)
		dc.SetLineWidth(1)
		dc.DrawCircle(half, half, r)
		dc.Stroke()
	}

	if r := half - tokenRimInset; r > 0 {
		dc.SetRGBA(0, 0, 0, 0.5)
		dc.SetLineWidth(1)
		dc.DrawCircle(half, half, r)
		dc.Stroke()
	}

	return imaging.Clone(dc.Image())
}

// tokenShadow builds a blurred black silhouette of layer.
func tokenShadow(layer *image.NRGBA) image.Image {
	b := layer.Bounds()
	silhouette := image.NewNRGBA(b)
	for i := 3; i < len(layer.Pix); i += 4 {
		silhouette.Pix[i] = uint8(float64(layer.Pix[i]) * tokenShadowOpacity)
	}
	return blur.Gaussian(silhouette, tokenShadowSigma)
}
