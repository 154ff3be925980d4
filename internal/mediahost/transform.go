package mediahost

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// process decodes JPEG and PNG bodies once, shrinks them to maxWidth and bakes
// the named filter into the pixels. Anything it cannot decode is returned
// untouched, so videos and raw files are stored as sent.
func process(data []byte, mimeType string, maxWidth uint, filter string) []byte {
	var format imaging.Format
	switch mimeType {
	case "image/jpeg":
		format = imaging.JPEG
	case "image/png":
		format = imaging.PNG
	default:
		return data
	}

	effects := Transformation(filter)
	limit := maxWidth > 0
	if len(effects) == 0 && !limit {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	changed := false
	if limit && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
		changed = true
	}
	for _, e := range effects {
		img = applyEffect(img, e)
		changed = true
	}
	if !changed {
		return data
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, format, imaging.JPEGQuality(85)); err != nil {
		return data
	}
	return out.Bytes()
}

func applyEffect(img image.Image, effect string) image.Image {
	switch effect {
	case "e_grayscale":
		return imaging.Grayscale(img)
	case "e_sepia":
		return imaging.AdjustFunc(img, sepia)
	case "e_vignette":
		return vignette(img)
	default:
		return img
	}
}

func sepia(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	return color.NRGBA{
		R: clamp(0.393*r + 0.769*g + 0.189*b),
		G: clamp(0.349*r + 0.686*g + 0.168*b),
		B: clamp(0.272*r + 0.534*g + 0.131*b),
		A: c.A,
	}
}

// vignette darkens pixels by their distance from the centre, down to 40% in
// the corners.
func vignette(img image.Image) image.Image {
	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	cx, cy := float64(w-1)/2, float64(h-1)/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return dst
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			k := 1 - 0.6*d*d
			i := y*dst.Stride + x*4
			dst.Pix[i] = clamp(float64(dst.Pix[i]) * k)
			dst.Pix[i+1] = clamp(float64(dst.Pix[i+1]) * k)
			dst.Pix[i+2] = clamp(float64(dst.Pix[i+2]) * k)
		}
	}
	return dst
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

func normalizeFilter(filter string) string {
	return strings.ToLower(strings.TrimSpace(filter))
}
