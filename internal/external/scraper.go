package external

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"certverify/internal/browser"
	"certverify/internal/common/errors"
	"certverify/internal/common/httpclient"
	"certverify/internal/common/logger"
	"certverify/internal/ocr"
	"certverify/internal/pdfutil"
)

// link texts worth a content-type probe even without a .pdf extension.
var pdfLinkKeywords = []string{"download", "certificate", "statement", "score card", "print"}

var whitespacePattern = regexp.MustCompile(`\s+`)

// Scraper turns a verification URL into text sources: the rendered page
// plus any certificate PDFs linked from it.
type Scraper struct {
	renderer      browser.Renderer
	client        *httpclient.Client
	ocrEngine     ocr.Engine
	maxPDFs       int
	minTextLength int
	log           logger.Logger
}

func NewScraper(renderer browser.Renderer, client *httpclient.Client, ocrEngine ocr.Engine,
	maxPDFs, minTextLength int, log logger.Logger) *Scraper {
	return &Scraper{
		renderer:      renderer,
		client:        client,
		ocrEngine:     ocrEngine,
		maxPDFs:       maxPDFs,
		minTextLength: minTextLength,
		log:           log,
	}
}

// Fetch scrapes the verification URL and returns every text source found.
// Downloaded files are placed under workDir, which the caller owns.
func (s *Scraper) Fetch(ctx context.Context, pageURL, workDir string) ([]Source, error) {
	// Direct PDF links skip HTML rendering entirely.
	if s.looksPDF(ctx, pageURL) {
		src, err := s.fetchPDF(ctx, pageURL, workDir)
		if err != nil {
			return nil, err
		}
		return []Source{*src}, nil
	}

	html, finalURL := s.fetchHTML(ctx, pageURL)
	if html == "" {
		return nil, errors.NewScrapeFailedError(pageURL, fmt.Errorf("page could not be rendered or fetched"))
	}

	sources := []Source{{URL: finalURL, ContentType: "html", Text: htmlToText(html)}}

	for i, link := range s.findPDFLinks(ctx, html, finalURL) {
		if i >= s.maxPDFs {
			break
		}
		src, err := s.fetchPDF(ctx, link, workDir)
		if err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{"url": link}).Warn("linked pdf skipped")
			continue
		}
		sources = append(sources, *src)
	}
	return sources, nil
}

// fetchHTML renders the page with the headless browser, falling back to a
// plain GET plus static parse when rendering fails.
func (s *Scraper) fetchHTML(ctx context.Context, pageURL string) (html, finalURL string) {
	if s.renderer != nil {
		page, err := s.renderer.Render(ctx, pageURL)
		if err == nil {
			return page.HTML, page.FinalURL
		}
		s.log.WithError(err).Info("browser render failed, using static fetch")
	}

	resp, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return "", pageURL
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pageURL
	}
	return string(body), pageURL
}

// looksPDF routes by extension first and falls back to a HEAD content-type
// probe.
func (s *Scraper) looksPDF(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.Contains(strings.ToLower(u.Path), ".pdf") {
		return true
	}
	ctype, err := s.client.Head(ctx, rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(ctype), "application/pdf")
}

// fetchPDF downloads one PDF and extracts its text, with an OCR fallback
// when the text layer is too thin to be useful.
func (s *Scraper) fetchPDF(ctx context.Context, pdfURL, workDir string) (*Source, error) {
	name := path.Base(pdfURL)
	if name == "" || name == "." || name == "/" {
		name = "download.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	// Linked PDFs from the same page often share a basename.
	dest := filepath.Join(workDir, uuid.New().String()[:8]+"_"+name)

	out, err := os.Create(dest)
	if err != nil {
		return nil, errors.NewScrapeFailedError(pdfURL, err)
	}
	if _, err := s.client.Download(ctx, pdfURL, out); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, errors.NewScrapeFailedError(pdfURL, err)
	}

	text, err := s.pdfText(dest)
	if err != nil {
		return nil, err
	}
	return &Source{URL: pdfURL, ContentType: "pdf", Text: text}, nil
}

func (s *Scraper) pdfText(path string) (string, error) {
	f, err := pdfutil.Open(path)
	if err != nil {
		return "", errors.NewDocumentUnreadableError(err)
	}
	defer f.Close()

	text, err := f.Text()
	if err != nil {
		s.log.WithError(err).Warn("pdf text extraction failed")
	}
	if len(strings.TrimSpace(text)) >= s.minTextLength || s.ocrEngine == nil {
		return text, nil
	}

	// Scanned PDF: recognize the rendered first page instead.
	img, err := f.RenderPage(0)
	if err != nil {
		return text, nil
	}
	ocrText, err := ocr.RecognizeImage(s.ocrEngine, img)
	if err != nil {
		s.log.WithError(err).Warn("ocr fallback failed")
		return text, nil
	}
	return ocrText, nil
}

// findPDFLinks collects candidate PDF URLs from anchors, embeds and
// keyword-labelled links confirmed by a HEAD probe.
func (s *Scraper) findPDFLinks(ctx context.Context, html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []string
	add := func(href string) {
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		if strings.Contains(strings.ToLower(resolved), ".pdf") {
			add(href)
			return
		}
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		for _, kw := range pdfLinkKeywords {
			if strings.Contains(text, kw) {
				if ctype, err := s.client.Head(ctx, resolved); err == nil &&
					strings.Contains(strings.ToLower(ctype), "application/pdf") {
					add(href)
				}
				return
			}
		}
	})

	doc.Find("iframe[src], embed[src], object[data]").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			src, _ = sel.Attr("data")
		}
		if strings.Contains(strings.ToLower(src), ".pdf") {
			add(src)
		}
	})

	return links
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// htmlToText strips scripts, styles and chrome from the page and collapses
// the remaining text into clean lines.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, header, footer, nav").Remove()

	root := doc.Selection
	if main := doc.Find("main"); main.Length() > 0 {
		root = main
	}

	var lines []string
	for _, raw := range strings.Split(root.Text(), "\n") {
		line := whitespacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
