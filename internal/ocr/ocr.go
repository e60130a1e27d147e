// Package ocr wraps Tesseract behind a small interface so the pipeline can
// run with OCR disabled and tests can stub text recognition.
package ocr

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"certverify/internal/common/errors"
)

// Engine recognizes text in an image file.
type Engine interface {
	ImageText(path string) (string, error)
	Close() error
}

// TesseractEngine is the production Engine. The underlying client is created
// lazily on first use and reused for the life of the process; gosseract
// clients are not safe for concurrent use so calls are serialized.
type TesseractEngine struct {
	languages []string

	mu     sync.Mutex
	once   sync.Once
	client *gosseract.Client
	initEr error
}

func NewTesseract(languages []string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages}
}

func (e *TesseractEngine) init() {
	e.client = gosseract.NewClient()
	if err := e.client.SetLanguage(e.languages...); err != nil {
		e.initEr = errors.NewOCRFailedError(fmt.Errorf("set languages %s: %w", strings.Join(e.languages, "+"), err))
	}
}

// ImageText runs recognition on one image file.
func (e *TesseractEngine) ImageText(path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.once.Do(e.init)
	if e.initEr != nil {
		return "", e.initEr
	}
	if err := e.client.SetImage(path); err != nil {
		return "", errors.NewOCRFailedError(fmt.Errorf("set image: %w", err))
	}
	text, err := e.client.Text()
	if err != nil {
		return "", errors.NewOCRFailedError(err)
	}
	return strings.TrimSpace(text), nil
}

func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeImage spools an in-memory image to disk and recognizes it. Pages
// rendered from PDFs go through here.
func RecognizeImage(e Engine, img image.Image) (string, error) {
	tmp, err := os.CreateTemp("", "certverify_ocr_*.png")
	if err != nil {
		return "", errors.NewOCRFailedError(fmt.Errorf("create temp image: %w", err))
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", errors.NewOCRFailedError(fmt.Errorf("encode temp image: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewOCRFailedError(fmt.Errorf("flush temp image: %w", err))
	}
	return e.ImageText(tmp.Name())
}
