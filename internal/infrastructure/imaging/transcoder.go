// Package imaging turns uploaded product photos into compact JPEG data URIs for offers.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
)

var _ notificationapp.ImageTranscoder = (*Transcoder)(nil)

const (
	qualityStep  = 10
	qualityFloor = 30
	dataURIHead  = "data:image/jpeg;base64,"
)

// ErrEmptyImage is returned for zero-length input
var ErrEmptyImage = errors.New("imaging: empty image")

// Transcoder holds the offer image limits
type Transcoder struct {
	MaxDim   int
	Quality  int
	MaxBytes int
}

// NewTranscoder creates a transcoder, applying the usual 1280px / q70 / 850KB defaults to zero values
func NewTranscoder(maxDim, quality, maxBytes int) *Transcoder {
	if maxDim <= 0 {
		maxDim = 1280
	}
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	if maxBytes <= 0 {
		maxBytes = 850_000
	}
	return &Transcoder{MaxDim: maxDim, Quality: quality, MaxBytes: maxBytes}
}

// ToDataURI transcodes data with the configured limits
func (t *Transcoder) ToDataURI(data []byte) (string, error) {
	return ToCompressedJPEGDataURI(data, t.MaxDim, t.Quality, t.MaxBytes)
}

// ToCompressedJPEGDataURI decodes a JPEG, PNG, GIF or WebP image, scales its longest
// side down to maxDim and re-encodes it as JPEG. Quality drops in steps of 10 while the
// output exceeds maxBytes, stopping at 30; the last encoding is returned either way.
func ToCompressedJPEGDataURI(data []byte, maxDim, quality, maxBytes int) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("imaging: decode: %w", err)
	}

	img := flatten(resize(src, maxDim))

	var buf bytes.Buffer
	q := quality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return "", fmt.Errorf("imaging: encode: %w", err)
		}
		if maxBytes <= 0 || buf.Len() <= maxBytes || q <= qualityFloor {
			break
		}
		q -= qualityStep
		if q < qualityFloor {
			q = qualityFloor
		}
	}
	return dataURIHead + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// resize scales src so its longest side is at most maxDim
func resize(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// flatten composites transparent pixels over white, since JPEG has no alpha
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
