package restaurants

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrPNGSize = 512

// menuQRPNG renders the public menu URL as a PNG QR code.
func menuQRPNG(menuURL string) ([]byte, error) {
	return qrcode.Encode(menuURL, qrcode.Medium, qrPNGSize)
}

// menuQRSVG renders the public menu URL as an SVG QR code. Print shops ask
// for vector art, so the same bitmap is emitted as one rect per dark module.
func menuQRSVG(menuURL string) (string, error) {
	qr, err := qrcode.New(menuURL, qrcode.Medium)
	if err != nil {
		return "", err
	}
	grid := qr.Bitmap()
	n := len(grid)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
	for y, row := range grid {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}
