package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// A4 at 96 DPI
const (
	viewportWidth  = 794
	viewportHeight = 1123
)

const waitForAssetsJS = `
(function() {
	return Promise.all([
		document.fonts.ready,
		Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
			return new Promise((resolve) => {
				if (img.complete && img.naturalWidth > 0) {
					resolve();
					return;
				}
				const timeout = setTimeout(() => resolve(), 5000);
				img.onload = () => { clearTimeout(timeout); resolve(); };
				img.onerror = () => { clearTimeout(timeout); resolve(); };
			});
		}))
	]);
})();
`

// ExportService prints rendered storefront pages to PDF or PNG with a headless browser
type ExportService struct {
	chromePath string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewExportService creates a new ExportService. An empty chromePath is resolved from
// well-known install locations.
func NewExportService(chromePath string, timeout time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExportService{chromePath: chromePath, timeout: timeout, logger: logger}
}

var _ ExportServiceInterface = (*ExportService)(nil)

// detectChromePath returns the first Chrome/Chromium binary found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	for _, path := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// browser starts a headless browser bound to ctx
func (s *ExportService) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if path := detectChromePath(s.chromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// GeneratePDF prints renderURL to a single PDF document
func (s *ExportService) GeneratePDF(ctx context.Context, renderURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	browserCtx, closeBrowser := s.browser(ctx)
	defer closeBrowser()

	s.logger.Info("exporting pdf", zap.String("url", renderURL))

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForAssetsJS, nil, awaitPromise),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdf, nil
}

// GeneratePNG captures every `.page` element of renderURL as its own PNG, keyed by
// 1-based page number. A document without `.page` elements is captured whole.
func (s *ExportService) GeneratePNG(ctx context.Context, renderURL string) (map[int][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	browserCtx, closeBrowser := s.browser(ctx)
	defer closeBrowser()

	var nodes []*cdp.Node
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForAssetsJS, nil, awaitPromise),
		chromedp.Nodes(".page", &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	s.logger.Info("exporting png", zap.String("url", renderURL), zap.Int("pages", len(nodes)))

	if len(nodes) == 0 {
		var buf []byte
		if err := chromedp.Run(browserCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
			return nil, fmt.Errorf("failed to capture screenshot: %w", err)
		}
		return map[int][]byte{1: buf}, nil
	}

	pngs := make(map[int][]byte, len(nodes))
	for i, node := range nodes {
		var buf []byte
		if err := chromedp.Run(browserCtx,
			chromedp.Screenshot([]cdp.NodeID{node.NodeID}, &buf, chromedp.ByNodeID),
		); err != nil {
			return nil, fmt.Errorf("failed to capture page %d: %w", i+1, err)
		}
		pngs[i+1] = buf
	}
	return pngs, nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// ExportFileName names one file of the export identified by exportID
func ExportFileName(exportID, format string, pageNum int) string {
	if format == FormatPNG {
		return fmt.Sprintf("catalog-%s-p%d.png", exportID, pageNum)
	}
	return fmt.Sprintf("catalog-%s.pdf", exportID)
}

// WriteExport writes the exported files into dir under a fresh export id and returns
// their paths in page order
func WriteExport(dir, format string, pdf []byte, pngs map[int][]byte) ([]string, error) {
	exportID := uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if strings.EqualFold(format, FormatPDF) {
		path := filepath.Join(dir, ExportFileName(exportID, FormatPDF, 0))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write export: %w", err)
		}
		return []string{path}, nil
	}

	pages := make([]int, 0, len(pngs))
	for n := range pngs {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	paths := make([]string, 0, len(pages))
	for _, n := range pages {
		path := filepath.Join(dir, ExportFileName(exportID, FormatPNG, n))
		if err := os.WriteFile(path, pngs[n], 0o644); err != nil {
			return nil, fmt.Errorf("failed to write export: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
