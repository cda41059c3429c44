package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const (
	defaultQRCodeSizePx = 256

	// MaxQRCodeSizePx caps the rendered QR bitmap. Larger layers scale it up.
	MaxQRCodeSizePx = 2048
)

var ErrEmptyQRPayload = errors.New("qr code payload is empty")

// QRCode returns a QR code image for the given payload.
func QRCode(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, ErrEmptyQRPayload
	}
	sizePx = qrCodeSize(sizePx)

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}

// QRCodePNG encodes the QR code for payload as PNG bytes.
func QRCodePNG(payload string, sizePx int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyQRPayload
	}
	sizePx = qrCodeSize(sizePx)
	return qrcode.Encode(payload, qrcode.Medium, sizePx)
}

func qrCodeSize(sizePx int) int {
	switch {
	case sizePx <= 0:
		return defaultQRCodeSizePx
	case sizePx > MaxQRCodeSizePx:
		return MaxQRCodeSizePx
	}
	return sizePx
}
