package artcache

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// scaleDown decodes raw and, when it is wider than maxDim, shrinks it to
// maxDim wide keeping the aspect ratio. Narrow images come back untouched.
// The result keeps the source format; formats without an encoder (webp)
// are written as PNG.
func scaleDown(raw []byte, maxDim int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	src := img.Bounds()
	if src.Dx() <= maxDim {
		return raw, nil
	}

	h := src.Dy() * maxDim / src.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxDim, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	case "bmp":
		err = bmp.Encode(&buf, dst)
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
} // func scaleDown

// LoadPlaceholder reads the bundled stand-in image. A missing or unreadable
// file falls back to a generated 1x1 PNG.
func LoadPlaceholder(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		log.Printf("[art] placeholder %s unavailable (%v), using blank image", path, err)
		return blankPNG()
	}
	return b
}

func blankPNG() []byte {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
