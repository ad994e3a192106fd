package cache

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

// FetchTimeout bounds one remote asset download.
const FetchTimeout = 5 * time.Second

const fetchQueueSize = 64

type fetchRequest struct {
	url  string
	dest string
}

// Fetcher downloads missing remote assets on a single worker. Requests are
// keyed by download URL with at most one in flight per URL; duplicates are
// dropped silently. Failures are swallowed; the asset simply stays missing
// until a later render re-requests it.
type Fetcher struct {
	client   *http.Client
	queue    chan fetchRequest
	notify   func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewFetcher creates a fetcher. notify is invoked after every successful
// download, so the render loop can force a refresh; it may be nil.
func NewFetcher(notify func()) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: FetchTimeout},
		queue:   make(chan fetchRequest, fetchQueueSize),
		notify:  notify,
		stop:    make(chan struct{}),
		pending: map[string]struct{}{},
	}
}

// Start launches the worker. It exits when ctx is canceled or Close runs.
func (f *Fetcher) Start(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-f.stop:
				return
			case req := <-f.queue:
				f.fetch(req)
			}
		}
	}()
}

// Close stops the worker and waits for an in-flight fetch to finish.
func (f *Fetcher) Close() {
	f.stopOnce.Do(func() { close(f.stop) })
	f.wg.Wait()
}

// Request enqueues a download of url into dest. A URL already queued or in
// flight is ignored.
func (f *Fetcher) Request(url, dest string) {
	if url == "" || dest == "" {
		return
	}
	f.mu.Lock()
	if _, inFlight := f.pending[url]; inFlight {
		f.mu.Unlock()
		return
	}
	f.pending[url] = struct{}{}
	f.mu.Unlock()

	select {
	case f.queue <- fetchRequest{url: url, dest: dest}:
	default:
		// Queue full: forget the request so a later render can retry.
		f.forget(url)
	}
}

// InFlight reports whether url is queued or being fetched. Used by tests.
func (f *Fetcher) InFlight(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[url]
	return ok
}

func (f *Fetcher) forget(url string) {
	f.mu.Lock()
	delete(f.pending, url)
	f.mu.Unlock()
}

func (f *Fetcher) fetch(req fetchRequest) {
	defer f.forget(req.url)

	logging.Info("downloading asset", zap.String("url", req.url))
	resp, err := f.client.Get(req.url)
	if err != nil {
		logging.Debug("asset fetch failed", zap.String("url", req.url), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logging.Debug("asset fetch rejected",
			zap.String("url", req.url),
			zap.Int("status", resp.StatusCode),
		)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.Debug("asset read failed", zap.String("url", req.url), zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(req.dest), 0o755); err != nil {
		logging.Warn("asset dir create failed", zap.String("path", req.dest), zap.Error(err))
		return
	}
	if err := os.WriteFile(req.dest, body, 0o644); err != nil {
		logging.Warn("asset write failed", zap.String("path", req.dest), zap.Error(err))
		return
	}

	if f.notify != nil {
		f.notify()
	}
}
