package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	defaultMaxConcurrent = 2
)

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// ExecPath points at the Chrome binary; empty uses chromedp's lookup
	ExecPath string
	// RemoteURL attaches to a running Chrome instead of launching one
	RemoteURL string
	// MaxConcurrent bounds the number of open tabs
	MaxConcurrent int
	// NoSandbox is required when Chrome runs as root in a container
	NoSandbox       bool
	Scale           float64
	PrintBackground bool
	Logger          *zap.Logger
}

// ChromedpRenderer prints complete HTML documents to A4 PDF. One browser is shared;
// every render gets its own tab.
type ChromedpRenderer struct {
	config      ChromedpConfig
	logger      *zap.Logger
	tabs        *semaphore.Weighted
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer prepares the allocator. Chrome itself starts on the first Render.
func NewChromedpRenderer(config *ChromedpConfig) *ChromedpRenderer {
	cfg := ChromedpConfig{PrintBackground: true}
	if config != nil {
		cfg = *config
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultChromeTimeout
	}
	if cfg.Scale <= 0 {
		cfg.Scale = defaultScale
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{
		config: cfg,
		logger: logger.Named("chromedp"),
		tabs:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
	r.allocCtx, r.allocCancel = r.newAllocator()
	return r
}

func (r *ChromedpRenderer) newAllocator() (context.Context, context.CancelFunc) {
	if r.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // /dev/shm is tiny in Docker
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if r.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ExecPath))
	}
	return chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render prints req.HTML, which must be a complete document. Waiting for a free tab
// counts against the timeout.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := r.tabs.Acquire(ctx, 1); err != nil {
		return nil, renderCtxError(ctx, timeout, err)
	}
	defer r.tabs.Release(1)

	tabCtx, closeTab := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer closeTab()
	// the tab lives under the allocator, so tie it to the request deadline here
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, req.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = r.printParams(req.Margins).Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, renderCtxError(ctx, timeout, err)
		}
		r.logger.Error("Chrome print failed", zap.String("document", req.Title), zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome print failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: estimatePageCount(pdf), RenderDuration: time.Since(start)}
	r.logger.Debug("PDF rendered",
		zap.String("document", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// printParams prints A4 portrait. Chrome takes inches.
func (r *ChromedpRenderer) printParams(m Margins) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPaperWidth(mmToInches(a4WidthMM)).
		WithPaperHeight(mmToInches(a4HeightMM)).
		WithMarginTop(mmToInches(float64(m.Top))).
		WithMarginRight(mmToInches(float64(m.Right))).
		WithMarginBottom(mmToInches(float64(m.Bottom))).
		WithMarginLeft(mmToInches(float64(m.Left))).
		WithScale(r.config.Scale).
		WithPrintBackground(r.config.PrintBackground).
		WithPreferCSSPageSize(false)
}

func renderCtxError(ctx context.Context, timeout time.Duration, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), cause)
	}
	return NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", cause)
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	r.allocCancel()
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)

// estimatePageCount counts page objects, minus the parent /Pages nodes
func estimatePageCount(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}
