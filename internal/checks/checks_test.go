package checks

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/pdfutil"
)

// writeTempFile writes bytes under t.TempDir and returns the path.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func openTestFile(t *testing.T, name string, data []byte) *Input {
	t.Helper()
	f, err := pdfutil.Open(writeTempFile(t, name, data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return &Input{File: f}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScoreMetadata(t *testing.T) {
	tests := []struct {
		name        string
		producer    string
		wantScore   float64
		wantVerdict string
	}{
		{"clean producer", "skia/pdf m109", 100, VerdictGenuine},
		{"canva producer", "canva.com", 0, VerdictFake},
		{"photoshop producer", "adobe photoshop 24.0", 0, VerdictFake},
		{"word producer", "microsoft word 2019", 0, VerdictFake},
		{"empty producer", "", 0, VerdictFake},
		{"whitespace producer", "   ", 0, VerdictFake},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, verdict, _ := scoreMetadata(tt.producer)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantVerdict, verdict)
		})
	}
}

func TestELANoRasterImage(t *testing.T) {
	in := openTestFile(t, "vector.txt", []byte("plain text, no raster anywhere"))

	result, err := NewELACheck().Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, VerdictNotApplicable, result["verdict"])

	score, label := Normalize(result)
	assert.Equal(t, 50.0, score, "missing raster must never read as a tamper signal")
	assert.Equal(t, VerdictNotApplicable, label)
}

func TestStructureCheckNonPDF(t *testing.T) {
	in := openTestFile(t, "photo.txt", []byte("not a pdf"))

	result, err := NewStructureCheck().Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, VerdictNotApplicable, result["verdict"])
}

func TestTextFieldSignals(t *testing.T) {
	t.Run("keyword coverage", func(t *testing.T) {
		assert.Equal(t, 100.0, keywordSignal("This certificate for the course was awarded after completed work"))
		assert.Equal(t, 0.0, keywordSignal("completely unrelated text"))
		assert.Equal(t, 50.0, keywordSignal("a certificate for a course"))
	})

	t.Run("marks sanity", func(t *testing.T) {
		assert.Equal(t, 100.0, marksSignal("scored 87% in the final exam"))
		assert.Equal(t, 0.0, marksSignal("scored 187% in the final exam"))
		assert.Equal(t, 70.0, marksSignal("no marks mentioned at all"))
	})

	t.Run("spelling anomalies", func(t *testing.T) {
		clean := spellingSignal("has successfully completed the online course with distinction")
		noisy := spellingSignal("NJ ZWGZG XKCD QQQ has bcdfg zxcvb completed")
		assert.Greater(t, clean, noisy)
	})
}

func TestTextFieldRun(t *testing.T) {
	in := &Input{Text: "This certificate is awarded for the course Deep Learning, successfully completed with 92% marks."}

	result, err := NewTextFieldCheck(nil).Run(context.Background(), in)
	require.NoError(t, err)

	score, _ := Normalize(result)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	assert.Contains(t, []string{VerdictOriginal, VerdictSuspicious, VerdictFake}, result["verdict"])
}

func TestTextFieldNoText(t *testing.T) {
	result, err := NewTextFieldCheck(nil).Run(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, VerdictUncertain, result["verdict"])
}

type stubRefHashes struct {
	hashes []uint64
	err    error
}

func (s *stubRefHashes) ReferenceHashes(context.Context) ([]uint64, error) {
	return s.hashes, s.err
}

func testPage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8((x * y) % 256), 255})
		}
	}
	return img
}

func TestPHashNoCorpus(t *testing.T) {
	check := NewPHashCheck(&stubRefHashes{})
	result, err := check.Run(context.Background(), &Input{Page: testPage()})
	require.NoError(t, err)
	assert.Equal(t, VerdictNoDB, result["verdict"])

	score, _ := Normalize(result)
	assert.Equal(t, 50.0, score)
}

func TestPHashMatchesItself(t *testing.T) {
	page := testPage()

	probe := NewPHashCheck(&stubRefHashes{})
	probeResult, err := probe.Run(context.Background(), &Input{Page: page})
	require.NoError(t, err)
	selfHash := probeResult["phash"].(uint64)

	check := NewPHashCheck(&stubRefHashes{hashes: []uint64{selfHash}})
	result, err := check.Run(context.Background(), &Input{Page: page})
	require.NoError(t, err)

	assert.Equal(t, VerdictOriginal, result["verdict"])
	assert.Equal(t, 0, result["best_distance"])
}

func TestPHashDistantCorpus(t *testing.T) {
	check := NewPHashCheck(&stubRefHashes{hashes: []uint64{0xFFFFFFFFFFFFFFFF, 0}})
	result, err := check.Run(context.Background(), &Input{Page: testPage()})
	require.NoError(t, err)
	assert.Contains(t, []string{VerdictOriginal, VerdictPossibleMatch, VerdictNoMatch}, result["verdict"])
}

func TestSignatureImageBlankPage(t *testing.T) {
	blank := imaging.New(800, 600, color.White)
	result, err := NewSignatureImageCheck().Run(context.Background(), &Input{Page: blank})
	require.NoError(t, err)

	assert.Equal(t, VerdictNoSignature, result["verdict"])
	assert.Equal(t, 0, result["confidence"])
}

func TestSignatureImageDetectsInkBlob(t *testing.T) {
	page := imaging.New(800, 600, color.White)
	// Solid ink blob in the lower half, bounding box inside the signature
	// area band.
	for y := 450; y < 500; y++ {
		for x := 300; x < 400; x++ {
			page.Set(x, y, color.Black)
		}
	}

	result, err := NewSignatureImageCheck().Run(context.Background(), &Input{Page: page})
	require.NoError(t, err)
	assert.NotEqual(t, VerdictNoSignature, result["verdict"])
	assert.Contains(t, result, "stroke_stddev")
}

func TestFingerprintExactMatch(t *testing.T) {
	data := encodePNG(t, testPage())
	doc := openTestFile(t, "cert.png", data)
	ref := openTestFile(t, "ref.png", data)
	doc.Reference = ref.File

	result, err := NewFingerprintCheck().Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, VerdictExactMatch, result["verdict"])
}

func TestFingerprintNoReference(t *testing.T) {
	doc := openTestFile(t, "cert.png", encodePNG(t, testPage()))

	result, err := NewFingerprintCheck().Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, VerdictNoDB, result["verdict"])
	assert.NotEmpty(t, result["binary_hash"])
	assert.NotEmpty(t, result["canonical_hash"])
}
