package core

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
	"github.com/cpacia/dashlink/policy"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("CORE")

// outboundBuffer is the number of device commands which may be waiting on
// the transport before new ones are dropped.
const outboundBuffer = 64

// DeviceLink carries command frames to the phone. Implementations may be
// slow; the engine never calls them from the mutation path.
type DeviceLink interface {
	SendCommand(frame []byte) error
}

// SettingsStore persists preference values by key.
type SettingsStore interface {
	// GetSetting decodes the value for key into out and reports whether
	// the key exists.
	GetSetting(key string, out interface{}) (bool, error)

	// PutSetting stores the value under key.
	PutSetting(key string, value interface{}) error
}

// Config holds the collaborators of an Engine.
type Config struct {
	Bus      events.Bus
	Device   DeviceLink
	Settings SettingsStore

	// Clock defaults to the wall clock.
	Clock clock.Clock
}

type command struct {
	name  string
	apply func(now time.Time)
}

// Engine is the notification lifecycle engine. Every mutation, whether it
// comes from the phone, the user or a timer, is queued and applied in
// order by a single worker goroutine. Queries read a consistent snapshot
// under a read lock.
type Engine struct {
	bus      events.Bus
	clock    clock.Clock
	device   DeviceLink
	settings SettingsStore

	// mtx guards store and prefs. The worker holds the write lock while
	// applying a command.
	mtx   sync.RWMutex
	store *notificationStore
	prefs models.Preferences

	scheduler *expiryScheduler

	queueMtx sync.Mutex
	queue    []command
	stopped  bool
	wake     chan struct{}

	outbound chan []byte
	persist  *settingsWriter

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewEngine builds an engine and loads persisted preferences. The engine
// does not process commands until Start is called.
func NewEngine(cfg *Config) (*Engine, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	prefs, err := loadPreferences(cfg.Settings)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		bus:      bus,
		clock:    clk,
		device:   cfg.Device,
		settings: cfg.Settings,
		prefs:    prefs,
		wake:     make(chan struct{}, 1),
		outbound: make(chan []byte, outboundBuffer),
		shutdown: make(chan struct{}),
	}
	e.store = newNotificationStore(policy.NewTable(prefs.AllowedApps, prefs.BlockedApps), prefs.DoNotDisturb)
	e.scheduler = newExpiryScheduler(clk, e.submitSweep, e.submitResurface)
	e.store.unpark = e.scheduler.cancel
	e.persist = newSettingsWriter(cfg.Settings, bus)
	return e, nil
}

// Start launches the worker, the device sender and the scheduler.
// Commands submitted before Start are applied after the persisted
// auto-dismiss setting has armed the sweep.
func (e *Engine) Start() {
	e.mtx.RLock()
	sweep := e.prefs.AutoDismissAfterSeconds > 0
	e.mtx.RUnlock()
	e.scheduler.setSweeping(sweep)

	e.wg.Add(3)
	go e.run()
	go e.sendLoop()
	go e.persist.run(e.shutdown, &e.wg)
}

// Stop halts the scheduler and the worker. Commands still queued are
// discarded and later submissions fail with ErrEngineStopped.
func (e *Engine) Stop() {
	e.queueMtx.Lock()
	if e.stopped {
		e.queueMtx.Unlock()
		return
	}
	e.stopped = true
	e.queue = nil
	e.queueMtx.Unlock()

	e.scheduler.stop()
	close(e.shutdown)
	e.wg.Wait()
}

// Bus returns the bus the engine publishes to.
func (e *Engine) Bus() events.Bus {
	return e.bus
}

// SubscribeEvent subscribes to engine events.
func (e *Engine) SubscribeEvent(event interface{}) (events.Subscription, error) {
	return e.bus.Subscribe(event)
}

// submit appends a command to the queue. It never blocks.
func (e *Engine) submit(name string, fn func(now time.Time)) error {
	e.queueMtx.Lock()
	if e.stopped {
		e.queueMtx.Unlock()
		return ErrEngineStopped
	}
	e.queue = append(e.queue, command{name: name, apply: fn})
	e.queueMtx.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

func (e *Engine) next() (command, bool) {
	for {
		e.queueMtx.Lock()
		if len(e.queue) > 0 {
			cmd := e.queue[0]
			e.queue[0] = command{}
			e.queue = e.queue[1:]
			e.queueMtx.Unlock()
			return cmd, true
		}
		e.queueMtx.Unlock()

		select {
		case <-e.wake:
		case <-e.shutdown:
			return command{}, false
		}
	}
}

func (e *Engine) run() {
	defer e.wg.Done()
	for {
		cmd, ok := e.next()
		if !ok {
			return
		}

		e.mtx.Lock()
		cmd.apply(e.clock.Now())
		evts := e.store.drain()
		e.mtx.Unlock()

		for _, evt := range evts {
			e.bus.Emit(evt)
		}
	}
}

// Flush blocks until every command submitted before it has been applied
// and its events published.
func (e *Engine) Flush() error {
	done := make(chan struct{})
	if err := e.submit("flush", func(time.Time) { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-e.shutdown:
		return ErrEngineStopped
	}
}

// reportError logs the failure and queues an Error event. Must be called
// from the worker.
func (e *Engine) reportError(err error, format string, args ...interface{}) {
	log.Warningf(format+": %s", append(args, err)...)
	e.store.emit(&events.Error{Message: err.Error(), Err: err})
}

// send hands a frame to the device sender. Must be called from the worker.
func (e *Engine) send(frame []byte) {
	if e.device == nil {
		return
	}
	select {
	case e.outbound <- frame:
	default:
		e.reportError(errOutboundFull, "Dropping device command %x", frame)
	}
}

func (e *Engine) sendLoop() {
	defer e.wg.Done()
	for {
		select {
		case frame := <-e.outbound:
			if err := e.device.SendCommand(frame); err != nil {
				log.Warningf("Device command %x failed: %s", frame, err)
				e.bus.Emit(&events.Error{Message: err.Error(), Err: err})
			}
		case <-e.shutdown:
			return
		}
	}
}

func (e *Engine) submitSweep() {
	e.submit("sweep", e.applySweep)
}

func (e *Engine) submitResurface(id string, token uint64) {
	e.submit("resurface", func(now time.Time) {
		if e.store.resurface(id, token, now) {
			log.Debugf("Notification %s resurfaced from snooze", id)
		}
	})
}

// applySweep dismisses every active record which has been surfaced for at
// least the auto-dismiss threshold.
func (e *Engine) applySweep(now time.Time) {
	threshold := time.Duration(e.prefs.AutoDismissAfterSeconds) * time.Second
	if threshold <= 0 {
		return
	}
	ids := e.store.purge(func(n *models.Notification) bool {
		return now.Sub(n.SurfacedAt) >= threshold
	}, models.ReasonAutoDismissed, now)
	if len(ids) > 0 {
		log.Debugf("Auto-dismissed %d notifications", len(ids))
	}
}
