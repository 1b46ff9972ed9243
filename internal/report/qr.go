package report

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// EquipmentURL is the link printed on an equipment label.
func EquipmentURL(publicURL, id string) string {
	return publicURL + "/shop-floor#" + url.PathEscape(id)
}

// EquipmentQR returns a PNG QR code encoding content.
func EquipmentQR(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return png, nil
}
