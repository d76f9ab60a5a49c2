// Package manager is the public facade: it composes the registry and the
// durable store and owns the process's single overlay event loop.
package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"desktop-overlay-manager/display"
	"desktop-overlay-manager/geometry"
	"desktop-overlay-manager/registry"
	"desktop-overlay-manager/store"
	"desktop-overlay-manager/widget"
)

var (
	// ErrAlreadyRunning reports a second Manager trying to start its own
	// event loop while one is live in this process.
	ErrAlreadyRunning = errors.New("manager: overlay event loop already running in this process")

	// ErrClosed reports a call on a destroyed Manager.
	ErrClosed = errors.New("manager: event loop stopped")
)

// loopOwner enforces one live event loop per process.
var loopOwner atomic.Bool

const defaultLoopInterval = 10 * time.Millisecond

// Options configures a Manager. The zero value gives the file store in the
// default config dir, the platform widget driver, and a 10ms loop interval.
type Options struct {
	// ConfigDir overrides the store location (default ~/.desktop_overlay_manager).
	ConfigDir string

	// Store overrides the durable backend entirely. When set, ConfigDir is
	// ignored.
	Store store.Store

	// NewDriver builds the widget driver. It runs on the event-loop
	// goroutine so native windows belong to the pumping thread.
	// Defaults to widget.New.
	NewDriver func() widget.Driver

	// LoopInterval is the driver dispatch cadence.
	LoopInterval time.Duration

	// StrictStyle rejects unrecognized style options instead of logging them.
	StrictStyle bool

	// Bounds supplies screen bounds for geometry clamping.
	// Defaults to display.VirtualBounds.
	Bounds func() geometry.Rect
}

// RectOptions are the optional arguments of RegisterRect. Nil geometry
// fields resolve from stored geometry, then the built-in default.
type RectOptions struct {
	Label  string
	X      *int
	Y      *int
	Width  *int
	Height *int
	Style  widget.Style
}

// PointOptions are the optional arguments of RegisterPosition.
type PointOptions struct {
	Label string
	X     *int
	Y     *int
	Style widget.Style
}

type call struct {
	fn   func()
	done chan struct{}
}

// Manager exposes register/get/show/hide/destroy over the overlay registry.
// All operations marshal onto the event-loop goroutine and return
// synchronously.
type Manager struct {
	st  store.Store
	reg *registry.Registry

	calls    chan *call
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool
}

// New acquires the process-wide loop, opens the store, and starts the event
// loop. Exactly one Manager may be live per process; a second New fails with
// ErrAlreadyRunning until the first is destroyed.
func New(opts Options) (*Manager, error) {
	if !loopOwner.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	st := opts.Store
	if st == nil {
		dir := opts.ConfigDir
		if dir == "" {
			var err error
			if dir, err = store.DefaultDir(); err != nil {
				loopOwner.Store(false)
				return nil, err
			}
		}
		var err error
		if st, err = store.NewFileStore(dir); err != nil {
			loopOwner.Store(false)
			return nil, err
		}
	}

	newDriver := opts.NewDriver
	if newDriver == nil {
		newDriver = widget.New
	}
	bounds := opts.Bounds
	if bounds == nil {
		bounds = display.VirtualBounds
	}
	interval := opts.LoopInterval
	if interval <= 0 {
		interval = defaultLoopInterval
	}

	m := &Manager{
		st:      st,
		calls:   make(chan *call),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	ready := make(chan struct{})
	go m.run(newDriver, bounds, opts.StrictStyle, interval, ready)
	<-ready
	return m, nil
}

// run is the event loop. Widget drivers are created here so native windows
// belong to the goroutine (and OS thread) that pumps their messages.
func (m *Manager) run(newDriver func() widget.Driver, bounds func() geometry.Rect, strict bool, interval time.Duration, ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	driver := newDriver()
	m.reg = registry.New(driver, m.st,
		registry.WithBounds(bounds),
		registry.WithStrictStyle(strict),
	)
	close(ready)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			m.reg.DestroyAll()
			_ = driver.Close()
			close(m.stopped)
			return
		case c := <-m.calls:
			c.fn()
			close(c.done)
		case <-ticker.C:
			driver.Dispatch()
		}
	}
}

// do runs fn on the event-loop goroutine and waits for it.
func (m *Manager) do(fn func()) error {
	if m.closed.Load() {
		return ErrClosed
	}
	c := &call{fn: fn, done: make(chan struct{})}
	select {
	case m.calls <- c:
	case <-m.stopped:
		return ErrClosed
	}
	select {
	case <-c.done:
		return nil
	case <-m.stopped:
		return ErrClosed
	}
}

// RegisterRect creates or re-shows the draggable rectangle id. Registering
// an existing id never creates a second overlay; it updates label and style
// and re-shows it.
func (m *Manager) RegisterRect(id string, opts RectOptions) error {
	var ensureErr error
	patch := geometry.RectPatch{X: opts.X, Y: opts.Y, Width: opts.Width, Height: opts.Height}
	if err := m.do(func() {
		_, ensureErr = m.reg.EnsureRect(id, opts.Label, patch, opts.Style)
	}); err != nil {
		return err
	}
	return ensureErr
}

// RegisterPosition creates or re-shows the draggable point marker id.
func (m *Manager) RegisterPosition(id string, opts PointOptions) error {
	var ensureErr error
	patch := geometry.PointPatch{X: opts.X, Y: opts.Y}
	if err := m.do(func() {
		_, ensureErr = m.reg.EnsurePoint(id, opts.Label, patch, opts.Style)
	}); err != nil {
		return err
	}
	return ensureErr
}

// RegisterPoint is an accepted alias for RegisterPosition, kept for callers
// of older releases.
func (m *Manager) RegisterPoint(id string, opts PointOptions) error {
	return m.RegisterPosition(id, opts)
}

// GetRect returns the last known geometry for rect id: the live overlay if
// instantiated, the persisted entry otherwise. Unknown ids fail with
// registry.ErrNotFound.
func (m *Manager) GetRect(id string) (geometry.Rect, error) {
	var (
		r      geometry.Rect
		getErr error
	)
	if err := m.do(func() { r, getErr = m.reg.GetRect(id) }); err != nil {
		return geometry.Rect{}, err
	}
	return r, getErr
}

// GetPosition returns the last known position for point id.
func (m *Manager) GetPosition(id string) (geometry.Point, error) {
	var (
		p      geometry.Point
		getErr error
	)
	if err := m.do(func() { p, getErr = m.reg.GetPoint(id) }); err != nil {
		return geometry.Point{}, err
	}
	return p, getErr
}

// ShowAll makes every registered overlay visible. Idempotent.
func (m *Manager) ShowAll() error {
	return m.do(func() { m.reg.ShowAll() })
}

// HideAll hides every registered overlay without altering geometry.
// Idempotent.
func (m *Manager) HideAll() error {
	return m.do(func() { m.reg.HideAll() })
}

// ExportLayout returns all known geometry (live and persisted) as indented
// JSON, suitable for the clipboard.
func (m *Manager) ExportLayout() ([]byte, error) {
	var layout registry.Layout
	if err := m.do(func() { layout = m.reg.Snapshot() }); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manager: encode layout: %w", err)
	}
	return data, nil
}

// Destroy tears down every widget, stops the event loop, closes the store,
// and releases the process loop guard. Persisted geometry is untouched.
// Safe to call more than once.
func (m *Manager) Destroy() {
	m.stopOnce.Do(func() {
		m.closed.Store(true)
		close(m.stop)
		<-m.stopped
		if err := m.st.Close(); err != nil {
			log.Printf("manager: store close: %v", err)
		}
		loopOwner.Store(false)
	})
}
