// Package browser renders JavaScript-heavy verification pages with headless
// Chrome. Sites like NPTEL and Coursera serve certificate data from client
// side code, so a plain GET sees an empty shell.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"certverify/internal/common/errors"
	"certverify/internal/common/logger"
)

// Page is the rendered state of one navigation.
type Page struct {
	HTML     string
	Title    string
	FinalURL string
}

// Renderer fetches the post-JavaScript DOM of a URL.
type Renderer interface {
	Render(ctx context.Context, url string) (*Page, error)
}

// ChromeRenderer drives headless Chrome through chromedp. A semaphore caps
// concurrent browser sessions; Chrome tabs are memory hungry and the worker
// may verify several certificates at once.
type ChromeRenderer struct {
	timeout time.Duration
	sem     chan struct{}
	log     logger.Logger
}

func NewChromeRenderer(timeout time.Duration, maxSessions int, log logger.Logger) *ChromeRenderer {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &ChromeRenderer{
		timeout: timeout,
		sem:     make(chan struct{}, maxSessions),
		log:     log,
	}
}

// Render navigates to the URL, waits for the page to settle and returns the
// rendered DOM.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (*Page, error) {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, r.timeout)
	defer cancelRun()

	page := &Page{}
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		// Give SPA frameworks time to hydrate the certificate data.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &page.HTML),
		chromedp.Title(&page.Title),
		chromedp.Location(&page.FinalURL),
	)
	if err != nil {
		r.log.WithError(err).WithFields(map[string]interface{}{"url": url}).Warn("browser render failed")
		return nil, errors.NewScrapeFailedError(url, err)
	}
	return page, nil
}
