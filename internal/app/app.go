// Package app wires the device session together: configuration, the Home
// Assistant link, icon compositing, page rendering, input handling and the
// device driver, plus the notification plumbing between them.
package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/bus"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/config"
	"github.com/homedeck/homedeck/internal/deckdev"
	"github.com/homedeck/homedeck/internal/hass"
	"github.com/homedeck/homedeck/internal/icon"
	"github.com/homedeck/homedeck/internal/input"
	"github.com/homedeck/homedeck/internal/logging"
	"github.com/homedeck/homedeck/internal/page"
	"github.com/homedeck/homedeck/internal/style"
)

// reconnectDelay is the pause between Home Assistant connection attempts.
const reconnectDelay = 3 * time.Second

// Options configure a device session.
type Options struct {
	ConfigPath string
	CacheDir   string
	FontsDir   string
	Driver     deckdev.Driver

	// HAHost may be empty; the session then discovers an instance over
	// mDNS.
	HAHost  string
	HAToken string

	// CacheReads disables reuse of previously generated bitmaps when
	// false; everything still gets written for inspection.
	CacheReads bool
}

// App is one device session. Create with New, run with Start.
type App struct {
	opts Options

	store      *cache.Store
	fetcher    *cache.Fetcher
	compositor *icon.Compositor
	resolver   style.FlatResolver
	renderer   *page.Renderer
	engine     *input.Engine
	client     *hass.Client
	driver     deckdev.Driver
	bus        *bus.Bus

	mu  sync.Mutex
	cfg *config.Config
	// frame is the last rendered frame, consulted when dispatching
	// gestures so a tap always hits what the user saw.
	frame page.Frame

	renderCh    chan struct{}
	forceRender atomic.Bool
}

// New loads the configuration and builds the session. It does not touch
// the device or the network yet.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(opts.CacheDir, opts.CacheReads)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:     opts,
		store:    store,
		cfg:      cfg,
		driver:   opts.Driver,
		bus:      bus.New(),
		frame:    page.Frame{},
		renderer: page.NewRenderer(),
		renderCh: make(chan struct{}, 1),
	}

	a.fetcher = cache.NewFetcher(func() { a.bus.Publish(bus.TopicAssetAvailable) })
	a.compositor = icon.NewCompositor(store, a.fetcher, icon.NewFontCache(opts.FontsDir))
	a.client = hass.NewClient(opts.HAHost, opts.HAToken)
	a.client.OnStateChanged = func(string) { a.requestRender(false) }

	a.engine = input.NewEngine(input.NewClock(), powerConfig(cfg), input.Hooks{
		OnGesture:     a.dispatchGesture,
		OnNavigate:    func(string, int) { a.requestRender(false) },
		SetBrightness: a.setBrightness,
		// Runs synchronously so the wake sequence repaints the slots
		// before the brightness comes back up. Queueing on renderCh here
		// would restore brightness over whatever was on screen when the
		// device went to sleep.
		ForceRedraw: func() { a.renderCurrent(true) },
	})

	return a, nil
}

// Start runs the session until ctx is done or the device event stream
// closes.
func (a *App) Start(ctx context.Context) error {
	if err := a.driver.Start(ctx); err != nil {
		return err
	}
	defer a.driver.Close()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.fetcher.Start(loopCtx)
	defer a.fetcher.Close()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.engine.Run(loopCtx)
	}()
	go func() {
		defer wg.Done()
		a.connectLoop(loopCtx)
	}()
	go func() {
		defer wg.Done()
		if err := config.Watch(loopCtx, a.opts.ConfigPath, func() {
			a.bus.Publish(bus.TopicConfigChanged)
		}); err != nil {
			logging.Warn("config watch unavailable", zap.Error(err))
		}
	}()

	a.setBrightness(a.config().Brightness)
	a.requestRender(true)

	assetReady := a.bus.Subscribe(bus.TopicAssetAvailable)
	configChanged := a.bus.Subscribe(bus.TopicConfigChanged)
	events := a.driver.Events()

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			a.engine.HandleKey(ev.Slot, ev.Pressed)
		case <-assetReady:
			// A fetched asset changes fingerprints, so the diff alone
			// would miss it. Redraw from scratch.
			a.requestRender(true)
		case <-configChanged:
			a.reloadConfig()
		case <-a.renderCh:
			force := a.forceRender.Swap(false)
			a.renderCurrent(force)
		}
	}

	cancel()
	a.client.Close()
	wg.Wait()
	return err
}

func (a *App) config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// requestRender schedules a render pass on the session loop. Bursts
// coalesce; force survives coalescing.
func (a *App) requestRender(force bool) {
	if force {
		a.forceRender.Store(true)
	}
	select {
	case a.renderCh <- struct{}{}:
	default:
	}
}

// renderCurrent renders the current stack location and pushes changed
// slots to the device. With force, the diff baseline is dropped first and
// every slot is re-sent.
func (a *App) renderCurrent(force bool) {
	if !force && a.engine.State() == input.Asleep {
		return
	}
	if force {
		a.renderer.Reset()
	}

	cfg := a.config()
	entry := a.engine.Current()
	if !cfg.HasPage(entry.PageID) {
		logging.Warn("unknown page", zap.String("page", entry.PageID))
	}
	buttons := cfg.Pages[entry.PageID].Buttons

	frame, changed, dirty := a.renderer.Render(
		buttons,
		systemButtons(cfg),
		labelStyle(cfg),
		entry.PageNumber,
		a.engine.Depth() > 1,
		a.driver.SlotCount(),
		a.client.States(),
	)

	a.mu.Lock()
	a.frame = frame
	a.mu.Unlock()

	if !dirty && !force {
		return
	}

	width, height := a.driver.IconSize()
	targets := changed
	if force {
		targets = make([]int, a.driver.SlotCount())
		for i := range targets {
			targets[i] = i
		}
	}
	slots := make(map[int]deckdev.SlotContent, len(targets))
	for _, slot := range targets {
		b := frame[slot]
		if b == nil {
			slots[slot] = deckdev.SlotContent{}
			continue
		}
		layers := a.resolver.Resolve(b, width, height)
		_, file, err := a.compositor.Composite(width, height, layers)
		if err != nil {
			logging.Warn("composite failed", zap.Int("slot", slot), zap.Error(err))
			slots[slot] = deckdev.SlotContent{Name: b.DisplayName()}
			continue
		}
		slots[slot] = deckdev.SlotContent{Name: b.DisplayName(), IconFile: file}
	}

	if err := a.driver.SetSlots(slots, !force); err != nil {
		logging.Error("device update failed", zap.Error(err))
	}
}

// dispatchGesture routes a classified tap or hold to its configured
// action.
func (a *App) dispatchGesture(slot int, hold bool) {
	a.mu.Lock()
	b := a.frame[slot]
	a.mu.Unlock()

	action := b.ActionFor(hold)
	if action == nil || action.Action == "" {
		return
	}
	logging.Debug("dispatch",
		zap.Int("slot", slot),
		zap.Bool("hold", hold),
		zap.String("action", action.Action),
	)

	switch action.Action {
	case style.ActionPageBack:
		a.engine.GoBack()
	case style.ActionPagePrevious:
		a.engine.GoPrevious()
	case style.ActionPageNext:
		a.engine.GoNext()
	case style.ActionPageGoTo:
		target, _ := action.Data["page"].(string)
		if target == "" {
			logging.Warn("go_to without a page")
			return
		}
		a.engine.GoTo(target, 1, true)
	case style.ActionSystemExec:
		command, _ := action.Data["command"].(string)
		if command == "" {
			logging.Warn("exec without a command")
			return
		}
		go runCommand(command)
	default:
		domain, service, ok := strings.Cut(action.Action, ".")
		if !ok {
			logging.Warn("unroutable action", zap.String("action", action.Action))
			return
		}
		if err := a.client.CallService(domain, service, action.ServiceData(b.EntityID)); err != nil {
			logging.Warn("service call failed",
				zap.String("action", action.Action),
				zap.Error(err),
			)
		}
	}
}

func (a *App) setBrightness(level int) {
	if err := a.driver.SetBrightness(level); err != nil {
		logging.Warn("set brightness failed", zap.Error(err))
	}
}

// reloadConfig re-reads the configuration file. An invalid file keeps the
// running configuration; a valid one resets navigation and redraws.
func (a *App) reloadConfig() {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		logging.Warn("configuration reload rejected", zap.Error(err))
		return
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	logging.Info("configuration reloaded", zap.Int("pages", len(cfg.Pages)))
	a.engine.SetPowerConfig(powerConfig(cfg))
	a.engine.Wake()
	a.setBrightness(cfg.Brightness)
	a.engine.ResetStack()
	a.requestRender(true)
}

// connectLoop keeps the Home Assistant link alive, retrying every
// reconnectDelay. After each (re)connect the state snapshot is fresh, so a
// redraw runs.
func (a *App) connectLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if a.client.Host() == "" {
			host, err := hass.Discover(ctx)
			if err != nil {
				logging.Warn("home assistant discovery failed", zap.Error(err))
				if !sleepCtx(ctx, reconnectDelay) {
					return
				}
				continue
			}
			a.client.SetHost(host)
		}

		if err := a.client.Connect(ctx); err != nil {
			logging.Warn("home assistant connect failed", zap.Error(err))
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}
		a.requestRender(false)

		if err := a.client.Listen(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("home assistant connection lost", zap.Error(err))
		}
		if !sleepCtx(ctx, reconnectDelay) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func powerConfig(cfg *config.Config) input.PowerConfig {
	return input.PowerConfig{
		Brightness:    cfg.Brightness,
		DimBrightness: cfg.Sleep.DimBrightness,
		DimTimeout:    time.Duration(cfg.Sleep.DimTimeout) * time.Second,
		SleepTimeout:  time.Duration(cfg.Sleep.SleepTimeout) * time.Second,
	}
}

func labelStyle(cfg *config.Config) page.LabelStyle {
	if !cfg.LabelStyle.ShowTitle {
		return page.LabelStyle{}
	}
	return page.LabelStyle{
		Align: cfg.LabelStyle.Align,
		Color: cfg.LabelStyle.Color,
		Font:  cfg.LabelStyle.FontName(),
		Size:  cfg.LabelStyle.Size,
	}
}

func systemButtons(cfg *config.Config) page.SystemButtons {
	convert := func(sb config.SystemButton) page.SystemButton {
		return page.SystemButton{Button: sb.Button, Position: sb.Position}
	}
	return page.SystemButtons{
		Back:     convert(cfg.SystemButton(style.ActionPageBack)),
		Previous: convert(cfg.SystemButton(style.ActionPagePrevious)),
		Next:     convert(cfg.SystemButton(style.ActionPageNext)),
	}
}
