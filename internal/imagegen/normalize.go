package imagegen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Fixed output geometry for every accepted illustration.
const (
	TargetWidth  = 1280
	TargetHeight = 720
)

const jpegQuality = 90

// NormalizeImage decodes an accepted image, scales it to cover the target
// frame, center-crops the overflow, and re-encodes as JPEG. The result always
// has the deck's exact resolution.
func NormalizeImage(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, TargetWidth, TargetHeight))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds()), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// coverRect picks the largest centered source region matching the target
// aspect ratio, so scaling fills the frame without distortion.
func coverRect(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return bounds
	}
	// Compare w/h against TargetWidth/TargetHeight without floats.
	if w*TargetHeight > h*TargetWidth {
		// Source is wider than the target: crop the sides.
		cropW := h * TargetWidth / TargetHeight
		x0 := bounds.Min.X + (w-cropW)/2
		return image.Rect(x0, bounds.Min.Y, x0+cropW, bounds.Max.Y)
	}
	// Source is taller: crop top and bottom.
	cropH := w * TargetHeight / TargetWidth
	y0 := bounds.Min.Y + (h-cropH)/2
	return image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+cropH)
}
