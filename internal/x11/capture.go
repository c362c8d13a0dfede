package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// CaptureImage grabs the current contents of a viewable window as an RGBA
// image. The X server refuses unmapped windows, and some drivers return
// garbage for fully obscured ones; callers treat errors as "no picture
// right now".
func (c *Connection) CaptureImage(windowID xproto.Window) (*image.RGBA, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to size window %d: %w", windowID, err)
	}
	width := int(geom.Width)
	height := int(geom.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("window %d has no area", windowID)
	}

	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(windowID),
		0, 0,
		uint16(width), uint16(height),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to image window %d: %w", windowID, err)
	}
	if len(reply.Data) < width*height*4 {
		return nil, fmt.Errorf("short image data for window %d", windowID)
	}

	// ZPixmap data on depth 24/32 visuals is BGRx per pixel.
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		src := i * 4
		img.Pix[src+0] = reply.Data[src+2]
		img.Pix[src+1] = reply.Data[src+1]
		img.Pix[src+2] = reply.Data[src+0]
		img.Pix[src+3] = 0xff
	}
	return img, nil
}

// WindowIcon returns the largest icon a window attached via _NET_WM_ICON,
// decoded to RGBA.
func (c *Connection) WindowIcon(windowID xproto.Window) (*image.RGBA, error) {
	icons, err := ewmh.WmIconGet(c.XUtil, windowID)
	if err != nil {
		return nil, fmt.Errorf("no _NET_WM_ICON on window %d: %w", windowID, err)
	}

	var best *ewmh.WmIcon
	for i := range icons {
		ic := &icons[i]
		if ic.Width == 0 || ic.Height == 0 || uint(len(ic.Data)) < ic.Width*ic.Height {
			continue
		}
		if best == nil || ic.Width*ic.Height > best.Width*best.Height {
			best = ic
		}
	}
	if best == nil {
		return nil, fmt.Errorf("window %d has no usable icon sizes", windowID)
	}

	width := int(best.Width)
	height := int(best.Height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		argb := uint32(best.Data[i])
		dst := i * 4
		img.Pix[dst+0] = byte(argb >> 16)
		img.Pix[dst+1] = byte(argb >> 8)
		img.Pix[dst+2] = byte(argb)
		img.Pix[dst+3] = byte(argb >> 24)
	}
	return img, nil
}
