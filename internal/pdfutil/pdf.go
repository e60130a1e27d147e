// Package pdfutil provides the PDF primitives shared by the forensic checks:
// page rendering, text extraction, document metadata, embedded JPEG recovery
// and raw structural scanning.
package pdfutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

const renderDPI = 300

// File is one open certificate document. Raw bytes are kept alongside the
// parsed form because the structural check works on the bytes directly.
type File struct {
	path string
	raw  []byte
	doc  *fitz.Document
}

// Open reads a PDF or image file. For plain images doc stays nil and the
// render/text helpers fall back to the image itself.
func Open(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	f := &File{path: path, raw: raw}
	if isPDFBytes(raw) {
		doc, err := fitz.New(path)
		if err != nil {
			return nil, fmt.Errorf("open pdf %s: %w", path, err)
		}
		f.doc = doc
	}
	return f, nil
}

func isPDFBytes(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// IsPDF reports whether the underlying file parsed as a PDF.
func (f *File) IsPDF() bool { return f.doc != nil }

// Raw returns the raw file bytes.
func (f *File) Raw() []byte { return f.raw }

// PageCount returns the number of pages, 1 for plain images.
func (f *File) PageCount() int {
	if f.doc == nil {
		return 1
	}
	return f.doc.NumPage()
}

// Text extracts the text of every page.
func (f *File) Text() (string, error) {
	if f.doc == nil {
		return "", nil
	}
	var sb strings.Builder
	for i := 0; i < f.doc.NumPage(); i++ {
		t, err := f.doc.Text(i)
		if err != nil {
			return sb.String(), fmt.Errorf("extract text page %d: %w", i, err)
		}
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// RenderPage rasterizes one page at the standard DPI. For plain images the
// decoded image is returned.
func (f *File) RenderPage(page int) (image.Image, error) {
	if f.doc == nil {
		img, err := imaging.Open(f.path)
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", f.path, err)
		}
		return img, nil
	}
	img, err := f.doc.ImageDPI(page, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, nil
}

// CanonicalRender rasterizes the first page and resizes it to a fixed width
// keeping aspect ratio, so hashes computed from it are deterministic.
func (f *File) CanonicalRender(widthPx int) (image.Image, error) {
	img, err := f.RenderPage(0)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, widthPx, 0, imaging.Lanczos), nil
}

// Metadata returns the document information dictionary with lowercase keys.
// Plain images have no metadata.
func (f *File) Metadata() map[string]string {
	if f.doc == nil {
		return map[string]string{}
	}
	meta := f.doc.Metadata()
	clean := make(map[string]string, len(meta))
	for k, v := range meta {
		clean[strings.ToLower(k)] = v
	}
	return clean
}

// Close releases MuPDF resources.
func (f *File) Close() error {
	if f.doc != nil {
		return f.doc.Close()
	}
	return nil
}

// EmbeddedJPEGs pulls DCTDecode streams straight out of the raw PDF bytes
// and decodes them. MuPDF's Go binding exposes no xref image API, and the
// tamper checks need the embedded raster as stored, not a re-render.
// Non-PDF files decode to a single image when they are JPEGs themselves.
func (f *File) EmbeddedJPEGs(limit int) []image.Image {
	if !f.IsPDF() {
		if img, err := jpeg.Decode(bytes.NewReader(f.raw)); err == nil {
			return []image.Image{img}
		}
		if ext := strings.ToLower(filepath.Ext(f.path)); ext != "" && ext != ".pdf" {
			if img, err := imaging.Open(f.path); err == nil {
				return []image.Image{img}
			}
		}
		return nil
	}

	var out []image.Image
	raw := f.raw
	for start := 0; len(out) < limit; {
		idx := bytes.Index(raw[start:], []byte("/DCTDecode"))
		if idx < 0 {
			break
		}
		streamStart := start + idx
		payload, next := extractStream(raw, streamStart)
		start = next
		if payload == nil {
			continue
		}
		if img, err := jpeg.Decode(bytes.NewReader(payload)); err == nil {
			out = append(out, img)
		}
	}
	return out
}

// extractStream locates the stream payload following a filter marker and
// returns it plus the offset to resume scanning from.
func extractStream(raw []byte, from int) ([]byte, int) {
	streamTok := bytes.Index(raw[from:], []byte("stream"))
	if streamTok < 0 {
		return nil, len(raw)
	}
	dataStart := from + streamTok + len("stream")
	// The stream keyword is followed by CRLF or LF.
	if dataStart < len(raw) && raw[dataStart] == '\r' {
		dataStart++
	}
	if dataStart < len(raw) && raw[dataStart] == '\n' {
		dataStart++
	}

	end := bytes.Index(raw[dataStart:], []byte("endstream"))
	if end < 0 {
		return nil, len(raw)
	}
	payload := raw[dataStart : dataStart+end]
	payload = bytes.TrimRight(payload, "\r\n")
	return payload, dataStart + end + len("endstream")
}
