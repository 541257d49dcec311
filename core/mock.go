package core

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/cpacia/dashlink/devicelink"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/notifications"
	"github.com/cpacia/dashlink/repo"
)

// MockDevice records the command frames sent to the phone.
type MockDevice struct {
	mtx    sync.Mutex
	frames [][]byte
	err    error
	sent   chan []byte
}

// NewMockDevice returns a device which accepts every frame.
func NewMockDevice() *MockDevice {
	return &MockDevice{sent: make(chan []byte, 256)}
}

// SendCommand records the frame.
func (d *MockDevice) SendCommand(frame []byte) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, append([]byte{}, frame...))
	select {
	case d.sent <- frame:
	default:
	}
	return nil
}

// SetError makes subsequent sends fail with err.
func (d *MockDevice) SetError(err error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.err = err
}

// Frames returns every frame sent so far.
func (d *MockDevice) Frames() [][]byte {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	out := make([][]byte, len(d.frames))
	copy(out, d.frames)
	return out
}

// Sent delivers frames as they are sent.
func (d *MockDevice) Sent() <-chan []byte {
	return d.sent
}

// MockNode builds a node with a temp data directory, in-memory database,
// mock clock and mock device. It has no gateway.
func MockNode() (*DashNode, *clock.Mock, *MockDevice, error) {
	r, err := repo.MockRepo()
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		bus    = events.NewBus()
		clk    = clock.NewMock()
		device = NewMockDevice()
	)
	engine, err := NewEngine(&Config{
		Bus:      bus,
		Device:   device,
		Settings: r.Settings(),
		Clock:    clk,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	node := &DashNode{
		Engine:   engine,
		repo:     r,
		bridge:   devicelink.NewBridge(bus),
		shutdown: make(chan struct{}),
	}
	node.notifier = notifications.NewNotifier(bus, r.DB(), func(interface{}) error { return nil },
		notifications.ShowPreviews(engine.ShowPreviews))
	return node, clk, device, nil
}
