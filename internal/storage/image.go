package storage

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"

	"koinonia/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	imageMaxDimension = 2048
	jpegQuality       = 82
	webpQuality       = 70
)

// ProcessedImage holds the normalized encodings of an uploaded image.
// Every image upload is re-encoded, which strips metadata and guards
// against decompression bombs hiding behind a spoofed content type.
type ProcessedImage struct {
	JPEG   []byte
	WebP   []byte
	Width  int
	Height int
}

// ProcessImage decodes an uploaded image, scales it down so neither
// dimension exceeds imageMaxDimension, and re-encodes it as JPEG and WebP.
func ProcessImage(data []byte) (*ProcessedImage, error) {
	detected := http.DetectContentType(data)
	if !isSupportedImageMIME(detected) {
		return nil, models.NewValidationError("Unsupported image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	scaled := resizeToFit(decoded, imageMaxDimension, imageMaxDimension)

	encodedJPEG, err := encodeJPEG(scaled, jpegQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(scaled, webpQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	bounds := scaled.Bounds()
	return &ProcessedImage{
		JPEG:   encodedJPEG,
		WebP:   encodedWebP,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

func isSupportedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
