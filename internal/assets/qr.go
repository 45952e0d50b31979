package assets

import (
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// QRBadge renders content as a QR code of the given pixel size for the
// bottom-right corner of the frame.
func QRBadge(content string, size int) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}
