package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/homedeck/homedeck/internal/deckdev"
)

const testConfig = `
pages:
  $root:
    buttons: []
`

// recordingDriver captures the order of device calls.
type recordingDriver struct {
	mu    sync.Mutex
	calls []string
	ch    chan deckdev.KeyEvent
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{ch: make(chan deckdev.KeyEvent)}
}

func (d *recordingDriver) Start(ctx context.Context) error { return nil }

func (d *recordingDriver) Close() error {
	close(d.ch)
	return nil
}

func (d *recordingDriver) SetSlots(slots map[int]deckdev.SlotContent, updateOnly bool) error {
	d.mu.Lock()
	d.calls = append(d.calls, "slots")
	d.mu.Unlock()
	return nil
}

func (d *recordingDriver) SetBrightness(level int) error {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf("brightness:%d", level))
	d.mu.Unlock()
	return nil
}

func (d *recordingDriver) Events() <-chan deckdev.KeyEvent { return d.ch }

func (d *recordingDriver) SlotCount() int { return 15 }

func (d *recordingDriver) IconSize() (int, int) { return 100, 100 }

func (d *recordingDriver) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *recordingDriver) reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

func newTestApp(t *testing.T, driver deckdev.Driver) *App {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	a, err := New(Options{
		ConfigPath: cfgPath,
		CacheDir:   filepath.Join(dir, "cache"),
		FontsDir:   dir,
		Driver:     driver,
		CacheReads: true,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

// Waking from sleep has to repaint the slots before the backlight comes
// back, or the pre-sleep surface flashes at full brightness.
func TestWakeFromSleepRedrawsBeforeBrightness(t *testing.T) {
	driver := newRecordingDriver()
	a := newTestApp(t, driver)

	a.engine.Sleep()
	driver.reset()

	a.engine.HandleKey(0, true)
	a.engine.HandleKey(0, false)

	calls := driver.recorded()
	if len(calls) < 2 {
		t.Fatalf("expected a slot push and a brightness restore, got %v", calls)
	}
	if calls[0] != "slots" {
		t.Errorf("first device call after wake should repaint slots, got %v", calls)
	}
	last := calls[len(calls)-1]
	if last != "brightness:100" {
		t.Errorf("brightness restore should follow the repaint, got %v", calls)
	}
}
