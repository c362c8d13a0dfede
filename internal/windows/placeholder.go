package windows

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// renderPlaceholder paints the stand-in card for a window with no
// capturable surface: a solid background bearing the app icon when one is
// available.
func renderPlaceholder(icon image.Image, width, height int, bg color.RGBA) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if icon == nil || icon.Bounds().Empty() {
		return img
	}

	// The icon fills 40% of the short edge, centered, aspect preserved.
	side := height * 2 / 5
	if w := width * 2 / 5; w < side {
		side = w
	}
	if side <= 0 {
		return img
	}

	ib := icon.Bounds()
	dw, dh := side, side
	if ib.Dx() > ib.Dy() {
		dh = side * ib.Dy() / ib.Dx()
	} else if ib.Dy() > ib.Dx() {
		dw = side * ib.Dx() / ib.Dy()
	}
	if dw <= 0 || dh <= 0 {
		return img
	}

	x0 := (width - dw) / 2
	y0 := (height - dh) / 2
	xdraw.ApproxBiLinear.Scale(img, image.Rect(x0, y0, x0+dw, y0+dh), icon, ib, xdraw.Over, nil)
	return img
}
