package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestFetcherDownloadsAndNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<svg/>"))
	}))
	defer server.Close()

	var notified atomic.Int32
	f := NewFetcher(func() { notified.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)
	defer f.Close()

	dest := filepath.Join(t.TempDir(), "mdi", "lightbulb.svg")
	f.Request(server.URL, dest)

	waitFor(t, func() bool { return notified.Load() > 0 })
	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("asset not written: %v", err)
	}
	if string(body) != "<svg/>" {
		t.Errorf("asset body = %q", body)
	}
	waitFor(t, func() bool { return !f.InFlight(server.URL) })
}

func TestFetcherSingleFlight(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte("x"))
	}))
	defer server.Close()
	defer once.Do(func() { close(release) })

	f := NewFetcher(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)
	defer f.Close()

	dest := filepath.Join(t.TempDir(), "a.png")
	f.Request(server.URL, dest)
	waitFor(t, func() bool { return hits.Load() == 1 })

	// Re-requesting a URL already in flight must be a no-op.
	for i := 0; i < 10; i++ {
		f.Request(server.URL, dest)
	}
	once.Do(func() { close(release) })
	waitFor(t, func() bool { return !f.InFlight(server.URL) })

	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestFetcherSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	var notified atomic.Int32
	f := NewFetcher(func() { notified.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)
	defer f.Close()

	dest := filepath.Join(t.TempDir(), "missing.svg")
	f.Request(server.URL, dest)
	waitFor(t, func() bool { return !f.InFlight(server.URL) })

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("failed download must not leave a file behind")
	}
	if notified.Load() != 0 {
		t.Error("failed download must not notify")
	}

	// The URL is requestable again after the failure.
	f.Request(server.URL, dest)
	waitFor(t, func() bool { return !f.InFlight(server.URL) })
}

func TestFetcherIgnoresEmptyRequests(t *testing.T) {
	f := NewFetcher(nil)
	f.Request("", "dest")
	f.Request("http://example.com", "")
	if f.InFlight("http://example.com") || f.InFlight("") {
		t.Error("empty requests must not enter the pending set")
	}
}
