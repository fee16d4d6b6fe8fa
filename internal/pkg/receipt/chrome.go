package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

const defaultPrintTimeout = 30 * time.Second

// ChromeRenderer prints documents with headless Chrome. With RemoteURL set it
// attaches to a running browser (e.g. a chromedp/headless-shell container),
// otherwise it launches ExecPath or the first Chrome found on PATH.
type ChromeRenderer struct {
	RemoteURL string
	ExecPath  string
	Timeout   time.Duration
}

func NewChromeRendererFromEnv() *ChromeRenderer {
	return &ChromeRenderer{
		RemoteURL: env.GetEnv("CHROME_REMOTE_URL", ""),
		ExecPath:  env.GetEnv("CHROME_PATH", ""),
		Timeout:   env.GetEnvDuration("RECEIPT_PDF_TIMEOUT", defaultPrintTimeout),
	}
}

func (r *ChromeRenderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// PrintToPDF loads html into a blank page and prints it on A4.
func (r *ChromeRenderer) PrintToPDF(ctx context.Context, html []byte) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := r.allocator(ctx)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print failed: %w", err)
	}
	return pdf, nil
}
