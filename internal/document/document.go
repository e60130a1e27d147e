// Package document materializes an uploaded certificate reference (local
// path, remote URL or byte stream) into a scoped temporary file for the
// duration of one verification call.
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"certverify/internal/common/errors"
	"certverify/internal/common/httpclient"
)

// Document is a certificate materialized on local disk. Close destroys the
// backing temp directory; it must be called on every exit path.
type Document struct {
	Path    string
	WorkDir string

	owned bool
}

// Acquirer resolves document references into local Documents.
type Acquirer struct {
	client *httpclient.Client
}

func NewAcquirer(client *httpclient.Client) *Acquirer {
	return &Acquirer{client: client}
}

// FromRef materializes a local path or http(s) URL.
func (a *Acquirer) FromRef(ctx context.Context, ref string) (*Document, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return a.fromURL(ctx, ref)
	}
	return FromPath(ref)
}

// FromPath wraps an existing local file. The caller keeps ownership of the
// file; Close only removes the scratch directory.
func FromPath(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewDocumentNotFoundError(path)
	}

	workDir, err := os.MkdirTemp("", "certverify_")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	return &Document{Path: path, WorkDir: workDir}, nil
}

// FromReader spools a byte stream into a temp file.
func FromReader(r io.Reader, name string) (*Document, error) {
	workDir, err := os.MkdirTemp("", "certverify_")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	if name == "" {
		name = "uploaded_certificate.pdf"
	}
	path := filepath.Join(workDir, filepath.Base(name))

	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.RemoveAll(workDir)
		return nil, errors.NewDocumentUnreadableError(err)
	}
	if err := f.Close(); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Document{Path: path, WorkDir: workDir, owned: true}, nil
}

func (a *Acquirer) fromURL(ctx context.Context, url string) (*Document, error) {
	workDir, err := os.MkdirTemp("", "certverify_")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	path := filepath.Join(workDir, "downloaded_certificate.pdf")
	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := a.client.Download(ctx, url, f); err != nil {
		f.Close()
		os.RemoveAll(workDir)
		return nil, errors.NewDocumentFetchFailedError(url, err)
	}
	if err := f.Close(); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Document{Path: path, WorkDir: workDir, owned: true}, nil
}

// Bytes reads the full document contents.
func (d *Document) Bytes() ([]byte, error) {
	b, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, errors.NewDocumentUnreadableError(err)
	}
	return b, nil
}

// IsPDF reports whether the document looks like a PDF, by extension or magic
// header.
func (d *Document) IsPDF() bool {
	if strings.EqualFold(filepath.Ext(d.Path), ".pdf") {
		return true
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return string(head) == "%PDF-"
}

// Close removes the scratch directory and, for owned documents, the
// downloaded/spooled file with it.
func (d *Document) Close() error {
	if d.WorkDir == "" {
		return nil
	}
	err := os.RemoveAll(d.WorkDir)
	d.WorkDir = ""
	return err
}
