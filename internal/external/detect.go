package external

import (
	"image"
	"regexp"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"certverify/internal/pdfutil"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// maxQRPages bounds how many pages are rendered for QR scanning.
const maxQRPages = 3

// DetectURL finds a verification URL on the certificate. QR codes win over
// plain-text URLs: embedded rasters and rendered pages are scanned first,
// then the text layer is searched for the first http(s) link.
func DetectURL(file *pdfutil.File, text string) string {
	for _, img := range file.EmbeddedJPEGs(5) {
		if payload := decodeQR(img); payload != "" {
			return payload
		}
	}

	pages := file.PageCount()
	if pages > maxQRPages {
		pages = maxQRPages
	}
	for i := 0; i < pages; i++ {
		img, err := file.RenderPage(i)
		if err != nil {
			continue
		}
		if payload := decodeQR(img); payload != "" {
			return payload
		}
	}

	return urlPattern.FindString(text)
}

// decodeQR returns the QR payload when the image contains one and it looks
// like a URL, empty otherwise.
func decodeQR(img image.Image) string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return ""
	}
	return urlPattern.FindString(result.GetText())
}
