package utils

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCode renders content as a PNG QR code.
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	err = png.Encode(buf, qr.Image(size))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// BuildUpiLink builds the upi://pay deep link encoded into payment QR
// codes. Amount is formatted with two decimals as UPI apps expect.
func BuildUpiLink(upiId, payeeName string, amount float64, note string) string {
	q := url.Values{}
	q.Set("pa", upiId)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode()
}
