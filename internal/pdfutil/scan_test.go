package pdfutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanStructure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StructureInfo
	}{
		{
			name: "signed single revision",
			raw:  "%PDF-1.7\n1 0 obj<</Type/Sig/ByteRange[0 1 2 3]>>endobj\nxref\nstartxref\n123\n%%EOF",
			want: StructureInfo{Objects: 1, XRefTables: 1, StartXRefs: 1, HasSignature: true},
		},
		{
			name: "incremental update",
			raw:  "%PDF-1.4\n1 0 obj<<>>endobj\n2 0 obj<</Prev 99>>endobj\nxref\nstartxref\n1\nxref\nstartxref\n2\n%%EOF",
			want: StructureInfo{Objects: 2, XRefTables: 2, StartXRefs: 2, HasPrev: true, HasSignature: false},
		},
		{
			name: "empty",
			raw:  "",
			want: StructureInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanStructure([]byte(tt.raw)))
		})
	}
}

func TestExtractStream(t *testing.T) {
	raw := []byte("<</Filter/DCTDecode>>stream\r\nJPEGDATA\nendstream trailing")
	payload, next := extractStream(raw, 0)
	assert.Equal(t, "JPEGDATA", string(payload))
	assert.Greater(t, next, 0)

	payload, _ = extractStream([]byte("no stream keyword here really"), 10)
	assert.Nil(t, payload)
}
