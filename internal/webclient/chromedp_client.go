package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/promptlab/internal/logging"
)

const defaultIdleAfter = 500 * time.Millisecond

// ChromedpClient loads URLs in a headless Chrome tab, the way a browser page
// would, and returns the rendered document text as the body. Chrome wraps
// non-HTML documents such as JSON in <body><pre>, which is unwrapped here.
type ChromedpClient struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	idleAfter     time.Duration
	logger        logging.Logger
}

// NewChromedpClient starts a browser process. It fails when no Chrome
// binary can be launched.
func NewChromedpClient(cfg Config, logger logging.Logger) (WebClient, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = defaultIdleAfter
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.Headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromedpClient{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		idleAfter:     idleAfter,
		logger:        componentLogger,
	}, nil
}

type documentResponse struct {
	mu      sync.Mutex
	status  int
	headers http.Header
}

func (d *documentResponse) set(resp *network.Response) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = int(resp.Status)
	d.headers = http.Header{}
	for k, v := range resp.Headers {
		d.headers.Set(k, fmt.Sprint(v))
	}
}

// waitNetworkIdle returns a channel closed once no request has been in flight
// for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration, doc *documentResponse) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument && e.Response != nil {
				doc.set(e.Response)
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

// Do navigates a fresh tab to req.URL. Only GET is supported.
func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("method %s not supported by chromedp backend", method)
	}

	tabCtx, cancel := chromedp.NewContext(cdc.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	doc := &documentResponse{}
	idle := waitNetworkIdle(tabCtx, cdc.idleAfter, doc)

	actions := []chromedp.Action{network.Enable()}
	if len(req.Headers) > 0 {
		extra := network.Headers{}
		for k := range req.Headers {
			extra[k] = req.Headers.Get(k)
		}
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	actions = append(actions, chromedp.Navigate(req.URL))

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cdc.logger.Warn("navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, tabCtx.Err()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	body, err := documentText(html)
	if err != nil {
		return nil, err
	}

	doc.mu.Lock()
	status, headers := doc.status, doc.headers
	doc.mu.Unlock()

	return &Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// documentText returns the text Chrome rendered for a document. A lone <pre>
// in the body (how Chrome shows JSON and plain text) yields its content
// verbatim; anything else yields the trimmed body text.
func documentText(html string) (string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	if pre := d.Find("body > pre"); pre.Length() == 1 {
		return pre.Text(), nil
	}
	return strings.TrimSpace(d.Find("body").Text()), nil
}

func (cdc *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (cdc *ChromedpClient) Close() error {
	cdc.logger.Debug("closing chromedp webclient")
	cdc.browserCancel()
	cdc.allocCancel()
	return nil
}
