package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	r := rand.New(rand.NewSource(1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255}
			if noisy {
				c = color.NRGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeURI(t *testing.T, uri string) (image.Image, int) {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img, len(raw)
}

func TestToCompressedJPEGDataURI_Resizes(t *testing.T) {
	uri, err := ToCompressedJPEGDataURI(pngOf(t, 400, 200, false), 100, 70, 0)
	require.NoError(t, err)

	img, _ := decodeURI(t, uri)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestToCompressedJPEGDataURI_PortraitAndSmall(t *testing.T) {
	uri, err := ToCompressedJPEGDataURI(pngOf(t, 60, 240, false), 120, 70, 0)
	require.NoError(t, err)
	img, _ := decodeURI(t, uri)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	uri, err = ToCompressedJPEGDataURI(pngOf(t, 40, 20, false), 1280, 70, 0)
	require.NoError(t, err)
	img, _ = decodeURI(t, uri)
	assert.Equal(t, 40, img.Bounds().Dx(), "never upscales")
}

func TestToCompressedJPEGDataURI_LowersQualityToFitBudget(t *testing.T) {
	data := pngOf(t, 300, 300, true)

	loose, err := ToCompressedJPEGDataURI(data, 1280, 90, 0)
	require.NoError(t, err)
	_, looseSize := decodeURI(t, loose)

	tight, err := ToCompressedJPEGDataURI(data, 1280, 90, looseSize/2)
	require.NoError(t, err)
	_, tightSize := decodeURI(t, tight)
	assert.Less(t, tightSize, looseSize)

	floor, err := ToCompressedJPEGDataURI(data, 1280, 90, 1)
	require.NoError(t, err, "an unreachable budget still returns the floor-quality encoding")
	_, floorSize := decodeURI(t, floor)
	assert.LessOrEqual(t, floorSize, tightSize)
}

func TestToCompressedJPEGDataURI_Errors(t *testing.T) {
	_, err := ToCompressedJPEGDataURI(nil, 1280, 70, 0)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = ToCompressedJPEGDataURI([]byte("not an image"), 1280, 70, 0)
	assert.Error(t, err)
}

func TestNewTranscoder_Defaults(t *testing.T) {
	tr := NewTranscoder(0, 0, 0)
	assert.Equal(t, 1280, tr.MaxDim)
	assert.Equal(t, 70, tr.Quality)
	assert.Equal(t, 850_000, tr.MaxBytes)

	uri, err := tr.ToDataURI(pngOf(t, 10, 10, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, dataURIHead))
}
