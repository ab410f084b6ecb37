// Package png renders QR codes pointing at generated invoices.
package png

import (
	"os"

	"github.com/go-faster/errors"
	"github.com/skip2/go-qrcode"
)

const Size = 300

func Qr(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, Size)
}

// WriteQr writes a QR code for content to path.
func WriteQr(path, content string) error {
	data, err := Qr(content)
	if err != nil {
		return errors.Wrap(err, "encode QR code")
	}
	return os.WriteFile(path, data, 0o644)
}
