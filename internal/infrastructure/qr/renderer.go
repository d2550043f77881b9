package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	minSize     = 64
	maxSize     = 1024
	defaultSize = 256
)

// Renderer produces PNG QR codes for public document URLs. Size is clamped
// to a sane range so a caller-supplied query parameter cannot request a
// pathological image.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderPNG(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultSize
	}
	if size < minSize {
		size = minSize
	}
	if size > maxSize {
		size = maxSize
	}

	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
