package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// DefaultThreshold is the luma above which a pixel turns white.
const DefaultThreshold = 140

// minWidth is the width narrow scans are upscaled to. Tesseract does poorly
// on small glyphs.
const minWidth = 1200

// maxScale caps upscaling of tiny crops.
const maxScale = 4

// Binarize converts img to black and white using Rec. 601 luma.
func Binarize(img image.Image, threshold uint8) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			v := uint8(0)
			if luma > float64(threshold) {
				v = 255
			}
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: v})
		}
	}
	return out
}

// Prepare upscales narrow images and binarizes the result.
func Prepare(img image.Image) *image.Gray {
	return Binarize(upscale(img), DefaultThreshold)
}

func upscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dx() >= minWidth {
		return img
	}
	scale := min((minWidth+b.Dx()-1)/b.Dx(), maxScale)
	if scale <= 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
