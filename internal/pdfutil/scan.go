package pdfutil

import "bytes"

// StructureInfo is a raw-byte census of the PDF skeleton. It deliberately
// avoids the parsed object model so that malformed or deliberately damaged
// files can still be scored.
type StructureInfo struct {
	Objects      int
	XRefTables   int
	StartXRefs   int
	HasPrev      bool
	HasSignature bool
}

// ScanStructure counts the structural tokens the tamper heuristics score on.
func ScanStructure(raw []byte) StructureInfo {
	return StructureInfo{
		Objects:    bytes.Count(raw, []byte(" obj")),
		XRefTables: bytes.Count(raw, []byte("xref")) - bytes.Count(raw, []byte("startxref")),
		StartXRefs: bytes.Count(raw, []byte("startxref")),
		HasPrev:    bytes.Contains(raw, []byte("/Prev")),
		HasSignature: bytes.Contains(raw, []byte("/Sig")) ||
			bytes.Contains(raw, []byte("/ByteRange")) ||
			bytes.Contains(raw, []byte("/Contents")),
	}
}
