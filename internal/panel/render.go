package panel

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	xdraw "golang.org/x/image/draw"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/overlay"
	"github.com/1broseidon/dockpeek/internal/windows"
)

// Card colors. Visual richness is a non-goal; these just keep rows
// readable on any wallpaper.
var (
	colorCardBg    = color.RGBA{0x3b, 0x42, 0x52, 0xff}
	colorThumbBg   = color.RGBA{0x2e, 0x34, 0x40, 0xff}
	colorTitleText = color.RGBA{0xec, 0xef, 0xf4, 0xff}
	colorGlyphText = color.RGBA{0xd8, 0xde, 0xe9, 0xff}
	colorGlyphBg   = color.RGBA{0x43, 0x4c, 0x5e, 0xff}
	colorKillBg    = color.RGBA{0x5e, 0x43, 0x43, 0xff}
)

const (
	panelPad     = 8
	cardGap      = 8
	titleHeight  = 16
	actionBarH   = 18
	glyphSize    = 14
	glyphGap     = 4
	minCardWidth = 96
)

// actionGlyphs are the per-card controls, drawn left to right.
var actionGlyphs = []struct {
	action overlay.Action
	glyph  string
}{
	{overlay.ActionActivate, "f"},
	{overlay.ActionMinimize, "-"},
	{overlay.ActionMaximize, "+"},
	{overlay.ActionClose, "x"},
	{overlay.ActionTerminate, "k"},
}

// actionRegion is a clickable cell in panel-relative coordinates.
type actionRegion struct {
	action overlay.Action
	rect   geom.Rect
}

// cardRegion maps one window's card to its clickable areas. Clicks on the
// card body activate; clicks on a glyph cell run that control.
type cardRegion struct {
	window  windows.AppWindow
	rect    geom.Rect
	actions []actionRegion
}

// layoutSpec is the resolved card geometry for one composition pass.
type layoutSpec struct {
	cardW  int
	thumbH int
	cardH  int
	width  int
	height int
}

// computeLayout sizes cards for n windows. Cards shrink together when the
// natural width would exceed maxWidth, never below minCardWidth.
func computeLayout(n, thumbWidth, maxWidth int) layoutSpec {
	if n < 1 {
		n = 1
	}
	cardW := thumbWidth
	if cardW < minCardWidth {
		cardW = minCardWidth
	}

	width := 2*panelPad + n*cardW + (n-1)*cardGap
	if maxWidth > 0 && width > maxWidth {
		cardW = (maxWidth - 2*panelPad - (n-1)*cardGap) / n
		if cardW < minCardWidth {
			cardW = minCardWidth
		}
		width = 2*panelPad + n*cardW + (n-1)*cardGap
	}

	thumbH := cardW * 5 / 8
	cardH := thumbH + titleHeight + actionBarH
	return layoutSpec{
		cardW:  cardW,
		thumbH: thumbH,
		cardH:  cardH,
		width:  width,
		height: 2*panelPad + cardH,
	}
}

// PreviewCards reports the card rectangles and overall surface size a
// strip of n windows composes to, without rendering any pixels.
func PreviewCards(n, thumbWidth, maxWidth int) ([]geom.Rect, geom.Size) {
	spec := computeLayout(n, thumbWidth, maxWidth)
	cards := make([]geom.Rect, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, geom.Rect{
			X:      panelPad + i*(spec.cardW+cardGap),
			Y:      panelPad,
			Width:  spec.cardW,
			Height: spec.cardH,
		})
	}
	return cards, geom.Size{Width: spec.width, Height: spec.height}
}

// compose renders the full panel content off screen and returns the
// clickable regions alongside the bitmap.
func compose(wins []windows.AppWindow, thumbWidth, maxWidth int, background color.RGBA) (*image.RGBA, []cardRegion) {
	spec := computeLayout(len(wins), thumbWidth, maxWidth)

	img := image.NewRGBA(image.Rect(0, 0, spec.width, spec.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	regions := make([]cardRegion, 0, len(wins))
	for i, win := range wins {
		cardX := panelPad + i*(spec.cardW+cardGap)
		card := geom.Rect{X: cardX, Y: panelPad, Width: spec.cardW, Height: spec.cardH}
		regions = append(regions, cardRegion{
			window:  win,
			rect:    card,
			actions: drawCard(img, win, card, spec),
		})
	}
	return img, regions
}

func drawCard(img *image.RGBA, win windows.AppWindow, card geom.Rect, spec layoutSpec) []actionRegion {
	fill(img, card, colorCardBg)

	thumb := geom.Rect{X: card.X, Y: card.Y, Width: spec.cardW, Height: spec.thumbH}
	fill(img, thumb, colorThumbBg)
	if win.Image != nil {
		drawFitted(img, thumb, win.Image)
	}

	title := win.Title
	if title == "" {
		title = "(untitled)"
	}
	if win.Minimized {
		title = "[min] " + title
	}
	titleBase := card.Y + spec.thumbH + titleHeight - 4
	drawString(img, fitString(title, spec.cardW-2*glyphGap), card.X+glyphGap, titleBase, colorTitleText)

	actions := make([]actionRegion, 0, len(actionGlyphs))
	barY := card.Y + spec.thumbH + titleHeight + (actionBarH-glyphSize)/2
	for j, g := range actionGlyphs {
		cell := geom.Rect{
			X:      card.X + glyphGap + j*(glyphSize+glyphGap),
			Y:      barY,
			Width:  glyphSize,
			Height: glyphSize,
		}
		bg := colorGlyphBg
		if g.action == overlay.ActionTerminate {
			bg = colorKillBg
		}
		fill(img, cell, bg)
		drawString(img, g.glyph, cell.X+4, cell.Y+glyphSize-3, colorGlyphText)
		actions = append(actions, actionRegion{action: g.action, rect: cell})
	}
	return actions
}

// drawFitted scales src into dst preserving aspect ratio, centered.
func drawFitted(img *image.RGBA, dst geom.Rect, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 || dst.Width <= 0 || dst.Height <= 0 {
		return
	}

	w := dst.Width
	h := sb.Dy() * w / sb.Dx()
	if h > dst.Height {
		h = dst.Height
		w = sb.Dx() * h / sb.Dy()
	}
	if w < 1 || h < 1 {
		return
	}

	x := dst.X + (dst.Width-w)/2
	y := dst.Y + (dst.Height-h)/2
	target := image.Rect(x, y, x+w, y+h)
	xdraw.ApproxBiLinear.Scale(img, target, src, sb, xdraw.Src, nil)
}

func fill(img *image.RGBA, r geom.Rect, c color.RGBA) {
	draw.Draw(img, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height), image.NewUniform(c), image.Point{}, draw.Src)
}

func drawString(img *image.RGBA, s string, x, baseline int, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// fitString truncates s so it renders within maxPx, appending "..." when
// anything was cut.
func fitString(s string, maxPx int) string {
	if maxPx <= 0 {
		return ""
	}
	if font.MeasureString(basicfont.Face7x13, s).Ceil() <= maxPx {
		return s
	}

	ellipsis := font.MeasureString(basicfont.Face7x13, "...").Ceil()
	for len(s) > 0 {
		s = s[:len(s)-1]
		if font.MeasureString(basicfont.Face7x13, s).Ceil()+ellipsis <= maxPx {
			return s + "..."
		}
	}
	return "..."
}

// hitTest resolves a panel-relative click to a window action. Card bodies
// activate; glyph cells run their control.
func hitTest(regions []cardRegion, p geom.Point) (overlay.Action, windows.AppWindow, bool) {
	for _, card := range regions {
		if !card.rect.Contains(p) {
			continue
		}
		for _, a := range card.actions {
			if a.rect.Contains(p) {
				return a.action, card.window, true
			}
		}
		return overlay.ActionActivate, card.window, true
	}
	return "", windows.AppWindow{}, false
}
