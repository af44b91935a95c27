// internal/pdfgen/qr.go
package pdfgen

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// qrPNG encodes the payload as a QR code at error-correction level H and
// returns it as PNG bytes ready to embed in the document.
func qrPNG(payload string, size int) ([]byte, error) {
	code, err := qr.Encode(payload, qr.H, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR payload: %w", err)
	}

	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	// The barcode image carries a 16-bit color model and png.Encode preserves
	// it, but the PDF backend only embeds 8-bit PNGs. Redraw into 8-bit
	// grayscale before encoding.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to render QR PNG: %w", err)
	}
	return buf.Bytes(), nil
}
