// Package input classifies raw press/release events into tap and hold
// gestures, owns the page navigation stack and runs the sleep/dim/wake
// power model.
package input

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

// HoldThreshold is how long a press must last to become a hold.
const HoldThreshold = 500 * time.Millisecond

// tickInterval drives the power state machine.
const tickInterval = time.Second

// wakeSettle is the pause between the forced redraw and restoring
// brightness when waking from sleep, giving the device time to apply the
// new frame before it becomes visible.
const wakeSettle = 200 * time.Millisecond

// RootPage is the implicit floor of the navigation stack.
const RootPage = "$root"

// PowerState of the device session.
type PowerState int

const (
	Awake PowerState = iota
	Dimmed
	Asleep
)

func (s PowerState) String() string {
	switch s {
	case Dimmed:
		return "dimmed"
	case Asleep:
		return "asleep"
	default:
		return "awake"
	}
}

// StackEntry is one location on the navigation stack.
type StackEntry struct {
	PageID     string
	PageNumber int
}

// PowerConfig holds the idle thresholds. A zero timeout disables that
// transition.
type PowerConfig struct {
	Brightness    int
	DimBrightness int
	DimTimeout    time.Duration
	SleepTimeout  time.Duration
}

// Hooks are the engine's outputs. All callbacks run on the goroutine that
// triggered them; they must not call back into the engine.
type Hooks struct {
	// OnGesture delivers a classified tap (hold=false) or hold gesture.
	OnGesture func(slot int, hold bool)
	// OnNavigate fires after every stack mutation with the new location.
	OnNavigate func(pageID string, pageNumber int)
	// SetBrightness drives the device backlight (0-100).
	SetBrightness func(level int)
	// ForceRedraw requests a full, non-diffed redraw of the current page.
	ForceRedraw func()
}

// Engine is the interaction state machine. One instance exists per device
// session.
type Engine struct {
	clock Clock
	hooks Hooks

	mu           sync.Mutex
	power        PowerConfig
	state        PowerState
	stack        []StackEntry
	lastActivity time.Time

	holdTimer Timer
	holding   bool
	pressSlot int
}

// NewEngine creates an engine with "$root", page 1 as the stack floor.
func NewEngine(clock Clock, power PowerConfig, hooks Hooks) *Engine {
	return &Engine{
		clock:        clock,
		hooks:        hooks,
		power:        power,
		state:        Awake,
		stack:        []StackEntry{{PageID: RootPage, PageNumber: 1}},
		lastActivity: clock.Now(),
		pressSlot:    -1,
	}
}

// Run drives the periodic power tick until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.cancelHoldTimer()
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// SetPowerConfig swaps the idle thresholds (configuration reload).
func (e *Engine) SetPowerConfig(power PowerConfig) {
	e.mu.Lock()
	e.power = power
	e.mu.Unlock()
}

// HandleKey processes one raw device event. It never blocks on I/O: gesture
// classification is timer-based and rendering happens in the hooks.
func (e *Engine) HandleKey(slot int, pressed bool) {
	e.mu.Lock()
	e.lastActivity = e.clock.Now()

	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}

	if e.state != Awake {
		if e.state == Dimmed {
			// Any press wakes from dim; the gesture still counts.
			e.wakeLocked()
		} else {
			// Asleep: only a release wakes, and its gesture is discarded so
			// the wake press never triggers the button underneath.
			if !e.holding && !pressed {
				e.mu.Unlock()
				if e.hooks.ForceRedraw != nil {
					e.hooks.ForceRedraw()
				}
				e.clock.Sleep(wakeSettle)
				e.mu.Lock()
				e.wakeLocked()
			}
			e.holding = false
			e.mu.Unlock()
			return
		}
	}

	if pressed {
		e.holding = false
		e.pressSlot = slot
		pressedAt := e.clock.Now()
		e.holdTimer = e.clock.AfterFunc(HoldThreshold, func() {
			e.holdTimeout(slot, pressedAt)
		})
		e.mu.Unlock()
		return
	}

	wasHolding := e.holding
	e.holding = false
	e.mu.Unlock()

	if !wasHolding && e.hooks.OnGesture != nil {
		e.hooks.OnGesture(slot, false)
	}
}

func (e *Engine) holdTimeout(slot int, pressedAt time.Time) {
	e.mu.Lock()
	if e.clock.Now().Sub(pressedAt) < HoldThreshold || e.pressSlot != slot {
		e.mu.Unlock()
		return
	}
	e.holding = true
	e.holdTimer = nil
	e.mu.Unlock()

	if e.hooks.OnGesture != nil {
		e.hooks.OnGesture(slot, true)
	}
}

func (e *Engine) cancelHoldTimer() {
	e.mu.Lock()
	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}
	e.mu.Unlock()
}

// Tick advances the power state machine against the idle thresholds.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.state == Asleep {
		e.mu.Unlock()
		return
	}
	idle := e.clock.Now().Sub(e.lastActivity)
	power := e.power

	if power.SleepTimeout > 0 && idle >= power.SleepTimeout {
		e.state = Asleep
		e.lastActivity = e.clock.Now()
		e.mu.Unlock()
		logging.Debug("device asleep")
		if e.hooks.SetBrightness != nil {
			e.hooks.SetBrightness(0)
		}
		return
	}
	if power.DimTimeout > 0 && e.state != Dimmed && idle >= power.DimTimeout {
		e.state = Dimmed
		e.mu.Unlock()
		logging.Debug("device dimmed")
		if e.hooks.SetBrightness != nil {
			e.hooks.SetBrightness(power.DimBrightness)
		}
		return
	}
	e.mu.Unlock()
}

// State returns the current power state.
func (e *Engine) State() PowerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Wake forces the session awake (configuration reload, explicit wake).
func (e *Engine) Wake() {
	e.mu.Lock()
	e.wakeLocked()
	e.mu.Unlock()
}

// Sleep forces the session asleep.
func (e *Engine) Sleep() {
	e.mu.Lock()
	e.state = Asleep
	e.lastActivity = e.clock.Now()
	e.mu.Unlock()
	if e.hooks.SetBrightness != nil {
		e.hooks.SetBrightness(0)
	}
}

// wakeLocked restores brightness if needed and resets the idle timer.
// Caller holds e.mu.
func (e *Engine) wakeLocked() {
	wasAsleep := e.state != Awake
	e.state = Awake
	e.lastActivity = e.clock.Now()
	if wasAsleep && e.hooks.SetBrightness != nil {
		e.hooks.SetBrightness(e.power.Brightness)
	}
}

// Current returns the top of the navigation stack.
func (e *Engine) Current() StackEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack[len(e.stack)-1]
}

// Depth returns the navigation stack depth. Anything above 1 is a
// sub-page.
func (e *Engine) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.stack)
}

// GoTo pushes (or, when appendToStack is false, replaces the top with) the
// target location and announces it.
func (e *Engine) GoTo(pageID string, pageNumber int, appendToStack bool) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	entry := StackEntry{PageID: pageID, PageNumber: pageNumber}

	e.mu.Lock()
	if appendToStack {
		e.stack = append(e.stack, entry)
	} else {
		e.stack[len(e.stack)-1] = entry
	}
	e.mu.Unlock()

	logging.Debug("navigate", zap.String("page", pageID), zap.Int("number", pageNumber))
	e.announce(entry)
}

// ResetStack drops everything back to the root floor and announces it.
// Used after a configuration reload.
func (e *Engine) ResetStack() {
	entry := StackEntry{PageID: RootPage, PageNumber: 1}
	e.mu.Lock()
	e.stack = []StackEntry{entry}
	e.mu.Unlock()
	e.announce(entry)
}

// GoBack pops the top entry. The stack never empties: popping the last
// entry lands on the implicit root.
func (e *Engine) GoBack() {
	e.mu.Lock()
	if len(e.stack) > 1 {
		e.stack = e.stack[:len(e.stack)-1]
	} else {
		e.stack[0] = StackEntry{PageID: RootPage, PageNumber: 1}
	}
	entry := e.stack[len(e.stack)-1]
	e.mu.Unlock()

	e.announce(entry)
}

// GoPrevious decrements the top entry's page number, clamped at 1.
func (e *Engine) GoPrevious() {
	e.shiftPage(-1)
}

// GoNext increments the top entry's page number. There is no upper bound;
// running past the available pages renders an empty frame, not an error.
func (e *Engine) GoNext() {
	e.shiftPage(1)
}

func (e *Engine) shiftPage(delta int) {
	e.mu.Lock()
	top := &e.stack[len(e.stack)-1]
	top.PageNumber += delta
	if top.PageNumber < 1 {
		top.PageNumber = 1
	}
	entry := *top
	e.mu.Unlock()

	e.announce(entry)
}

func (e *Engine) announce(entry StackEntry) {
	if e.hooks.OnNavigate != nil {
		e.hooks.OnNavigate(entry.PageID, entry.PageNumber)
	}
}
