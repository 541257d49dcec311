package core

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cpacia/dashlink/ancs"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/repo"
)

func newTestEngine(t *testing.T) (*Engine, *clock.Mock, *MockDevice) {
	db, err := repo.MockDB()
	if err != nil {
		t.Fatal(err)
	}
	return newTestEngineWithSettings(t, repo.NewSettingsStore(db))
}

func newTestEngineWithSettings(t *testing.T, settings SettingsStore) (*Engine, *clock.Mock, *MockDevice) {
	var (
		clk    = clock.NewMock()
		device = NewMockDevice()
	)
	e, err := NewEngine(&Config{
		Device:   device,
		Settings: settings,
		Clock:    clk,
	})
	if err != nil {
		t.Fatal(err)
	}
	e.Start()
	t.Cleanup(e.Stop)
	return e, clk, device
}

func newFrame(evt ancs.EventID, flags, category uint8, uid uint32) []byte {
	return (&ancs.Event{
		EventID:       evt,
		Flags:         flags,
		CategoryID:    category,
		CategoryCount: 1,
		UID:           uid,
	}).Encode()
}

func attributesFrame(uid uint32, appID, appName, title, message string) []byte {
	return ancs.EncodeAttributes(&ancs.Attributes{
		UID:           uid,
		AppIdentifier: appID,
		AppName:       appName,
		Title:         title,
		Message:       message,
	})
}

func mustIngest(t *testing.T, e *Engine, frames ...[]byte) {
	for _, frame := range frames {
		if err := e.HandleFrame(frame); err != nil {
			t.Fatal(err)
		}
	}
	mustFlush(t, e)
}

func mustEnrich(t *testing.T, e *Engine, frames ...[]byte) {
	for _, frame := range frames {
		if err := e.HandleAttributes(frame); err != nil {
			t.Fatal(err)
		}
	}
	mustFlush(t, e)
}

func mustFlush(t *testing.T, e *Engine) {
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
}

// subscribeAll records every engine event. The buffer is large enough that
// the worker never blocks on the test.
func subscribeAll(t *testing.T, e *Engine) events.Subscription {
	sub, err := e.Bus().Subscribe(events.AllNotificationEvents(), events.BufSize(4096))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sub.Close() })
	return sub
}

// collect returns the events currently buffered on the subscription.
func collect(sub events.Subscription) []interface{} {
	var out []interface{}
	for {
		select {
		case evt := <-sub.Out():
			out = append(out, evt)
		default:
			return out
		}
	}
}

// waitFor reads events until one matches.
func waitFor(t *testing.T, sub events.Subscription, match func(evt interface{}) bool) interface{} {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt := <-sub.Out():
			if match(evt) {
				return evt
			}
		case <-timeout:
			t.Fatal("Timed out waiting for event")
		}
	}
}

func countChanges(evts []interface{}) []int {
	var counts []int
	for _, evt := range evts {
		if c, ok := evt.(*events.CountChanged); ok {
			counts = append(counts, c.Count)
		}
	}
	return counts
}

func activeIDs(e *Engine) []string {
	var ids []string
	for _, n := range e.Notifications() {
		ids = append(ids, n.ID)
	}
	return ids
}
