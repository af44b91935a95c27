// internal/pdfgen/qr_test.go
package pdfgen

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRPNGDecodes(t *testing.T) {
	data, err := qrPNG("TIANGUIS BEATS - VERIFICACION DE LICENCIA\nOrden: abc", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestQRPNGIsEightBitGrayscale(t *testing.T) {
	data, err := qrPNG("payload", 256)
	require.NoError(t, err)

	// IHDR bit depth byte: 8-byte signature, 4-byte chunk length, 4-byte
	// chunk type, 4-byte width, 4-byte height.
	require.Greater(t, len(data), 25)
	assert.Equal(t, byte(8), data[24])

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, ok := img.(*image.Gray)
	assert.True(t, ok)
}

func TestQRPNGScalesToRequestedSize(t *testing.T) {
	data, err := qrPNG("corto", 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
