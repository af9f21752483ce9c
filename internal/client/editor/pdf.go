package editor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrPDFUnavailable is returned when no headless browser can be found.
var ErrPDFUnavailable = errors.New("pdf export requires chromium or google-chrome")

// PDFRenderer turns a full HTML page into PDF bytes.
type PDFRenderer interface {
	PrintPDF(ctx context.Context, page string) ([]byte, error)
}

var browserCandidates = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// ChromePDF prints pages with a headless Chrome driven over the DevTools
// protocol.
type ChromePDF struct {
	Timeout  time.Duration
	lookPath func(string) (string, error)
}

func NewChromePDF(timeout time.Duration) *ChromePDF {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromePDF{Timeout: timeout, lookPath: exec.LookPath}
}

func (p *ChromePDF) browser() (string, error) {
	for _, name := range browserCandidates {
		if path, err := p.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrPDFUnavailable
}

func (p *ChromePDF) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := p.browser()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("data:text/html;charset=utf-8,"+percentEncodeForDataURL(html)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}
	return pdf, nil
}

// percentEncodeForDataURL escapes everything but RFC 3986 unreserved
// characters. Spaces become %20.
func percentEncodeForDataURL(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
