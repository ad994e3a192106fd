package input

import (
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock. AfterFunc callbacks fire inline
// from Advance once their deadline passes.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Sleep(time.Duration) {}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves the clock forward and fires due timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// gestureRecorder captures engine hook invocations.
type gestureRecorder struct {
	mu         sync.Mutex
	gestures   []string
	pages      []string
	brightness []int
	redraws    int
}

func (g *gestureRecorder) hooks() Hooks {
	return Hooks{
		OnGesture: func(_ int, hold bool) {
			g.mu.Lock()
			kind := "tap"
			if hold {
				kind = "hold"
			}
			g.gestures = append(g.gestures, kind)
			g.mu.Unlock()
		},
		OnNavigate: func(pageID string, _ int) {
			g.mu.Lock()
			g.pages = append(g.pages, pageID)
			g.mu.Unlock()
		},
		SetBrightness: func(level int) {
			g.mu.Lock()
			g.brightness = append(g.brightness, level)
			g.mu.Unlock()
		},
		ForceRedraw: func() {
			g.mu.Lock()
			g.redraws++
			g.mu.Unlock()
		},
	}
}

func (g *gestureRecorder) recorded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.gestures...)
}

func testPower() PowerConfig {
	return PowerConfig{Brightness: 100, DimBrightness: 10, DimTimeout: 10 * time.Second, SleepTimeout: 30 * time.Second}
}

func TestTapAndHold(t *testing.T) {
	tests := []struct {
		name     string
		pressFor time.Duration
		want     []string
	}{
		{"short press is a tap", 100 * time.Millisecond, []string{"tap"}},
		{"just under threshold is a tap", HoldThreshold - time.Millisecond, []string{"tap"}},
		{"long press is a hold", HoldThreshold, []string{"hold"}},
		{"very long press is one hold", 3 * time.Second, []string{"hold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			rec := &gestureRecorder{}
			e := NewEngine(clock, testPower(), rec.hooks())

			e.HandleKey(3, true)
			clock.Advance(tt.pressFor)
			e.HandleKey(3, false)

			if got := rec.recorded(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("gestures = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHoldFiresWithoutRelease(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	e.HandleKey(0, true)
	clock.Advance(HoldThreshold)
	// The hold is delivered while the key is still down.
	if got := rec.recorded(); !reflect.DeepEqual(got, []string{"hold"}) {
		t.Fatalf("gestures = %v, want a hold before release", got)
	}
	e.HandleKey(0, false)
	if got := rec.recorded(); !reflect.DeepEqual(got, []string{"hold"}) {
		t.Errorf("release after a hold produced extra gestures: %v", got)
	}
}

func TestPowerTransitions(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	if e.State() != Awake {
		t.Fatal("engine must start awake")
	}

	clock.Advance(10 * time.Second)
	e.Tick()
	if e.State() != Dimmed {
		t.Fatalf("state after dim timeout = %v", e.State())
	}

	clock.Advance(20 * time.Second)
	e.Tick()
	if e.State() != Asleep {
		t.Fatalf("state after sleep timeout = %v", e.State())
	}

	rec.mu.Lock()
	levels := append([]int(nil), rec.brightness...)
	rec.mu.Unlock()
	if !reflect.DeepEqual(levels, []int{10, 0}) {
		t.Errorf("brightness sequence = %v, want [10 0]", levels)
	}
}

func TestZeroTimeoutsDisableTransitions(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(clock, PowerConfig{Brightness: 100}, Hooks{})
	clock.Advance(time.Hour)
	e.Tick()
	if e.State() != Awake {
		t.Errorf("state = %v, want awake with timeouts disabled", e.State())
	}
}

func TestDimWakeKeepsGesture(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	clock.Advance(10 * time.Second)
	e.Tick()
	if e.State() != Dimmed {
		t.Fatal("setup: not dimmed")
	}

	e.HandleKey(2, true)
	if e.State() != Awake {
		t.Error("press must wake a dimmed session")
	}
	clock.Advance(100 * time.Millisecond)
	e.HandleKey(2, false)

	if got := rec.recorded(); !reflect.DeepEqual(got, []string{"tap"}) {
		t.Errorf("gestures = %v, the waking press should still count", got)
	}
}

func TestSleepWakeDiscardsGesture(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	clock.Advance(30 * time.Second)
	e.Tick()
	if e.State() != Asleep {
		t.Fatal("setup: not asleep")
	}

	e.HandleKey(4, true)
	if e.State() != Asleep {
		t.Error("a press alone must not wake a sleeping session")
	}
	e.HandleKey(4, false)
	if e.State() != Awake {
		t.Error("the release must wake the session")
	}

	if got := rec.recorded(); len(got) != 0 {
		t.Errorf("gestures = %v, the waking gesture must be discarded", got)
	}
	rec.mu.Lock()
	redraws := rec.redraws
	rec.mu.Unlock()
	if redraws != 1 {
		t.Errorf("redraws = %d, waking from sleep must force one", redraws)
	}
}

func TestNavigationStack(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	if got := e.Current(); got != (StackEntry{PageID: RootPage, PageNumber: 1}) {
		t.Fatalf("initial location = %+v", got)
	}

	e.GoTo("media", 1, true)
	if e.Depth() != 2 || e.Current().PageID != "media" {
		t.Errorf("after push: depth %d, top %+v", e.Depth(), e.Current())
	}

	e.GoNext()
	e.GoNext()
	if got := e.Current().PageNumber; got != 3 {
		t.Errorf("page number after two nexts = %d", got)
	}
	e.GoPrevious()
	if got := e.Current().PageNumber; got != 2 {
		t.Errorf("page number after previous = %d", got)
	}

	e.GoBack()
	if got := e.Current(); got != (StackEntry{PageID: RootPage, PageNumber: 1}) {
		t.Errorf("after pop: %+v", got)
	}

	// Popping the floor lands on root rather than emptying the stack.
	e.GoBack()
	if got := e.Current(); got != (StackEntry{PageID: RootPage, PageNumber: 1}) {
		t.Errorf("after over-pop: %+v", got)
	}
	if e.Depth() != 1 {
		t.Errorf("depth after over-pop = %d", e.Depth())
	}
}

func TestPreviousClampsAtPageOne(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(clock, testPower(), Hooks{})
	e.GoPrevious()
	e.GoPrevious()
	if got := e.Current().PageNumber; got != 1 {
		t.Errorf("page number = %d, want 1", got)
	}
}

func TestResetStack(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	e.GoTo("a", 1, true)
	e.GoTo("b", 2, true)
	e.ResetStack()

	if e.Depth() != 1 || e.Current().PageID != RootPage {
		t.Errorf("after reset: depth %d, top %+v", e.Depth(), e.Current())
	}
	rec.mu.Lock()
	pages := append([]string(nil), rec.pages...)
	rec.mu.Unlock()
	want := []string{"a", "b", RootPage}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("announced pages = %v, want %v", pages, want)
	}
}

func TestActivityResetsIdleTimer(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(clock, testPower(), Hooks{})

	clock.Advance(9 * time.Second)
	e.HandleKey(0, true)
	e.HandleKey(0, false)
	clock.Advance(9 * time.Second)
	e.Tick()
	if e.State() != Awake {
		t.Errorf("state = %v, activity should have reset the idle timer", e.State())
	}
}

func TestHoldTimerCanceledByFollowingEvent(t *testing.T) {
	clock := newFakeClock()
	rec := &gestureRecorder{}
	e := NewEngine(clock, testPower(), rec.hooks())

	e.HandleKey(1, true)
	clock.Advance(200 * time.Millisecond)
	e.HandleKey(1, false) // tap; timer stopped
	clock.Advance(time.Second)

	got := rec.recorded()
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"tap"}) {
		t.Errorf("gestures = %v, stale hold timer must not fire", got)
	}
}
