package core

import (
	"errors"
	"sort"
	"sync"

	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
)

// Keys under which preferences are persisted.
const (
	KeyDoNotDisturb     = "notifications/doNotDisturb"
	KeyAllowedApps      = "notifications/allowedApps"
	KeyBlockedApps      = "notifications/blockedApps"
	KeyShowPreviews     = "notifications/showPreviews"
	KeyAutoDismissAfter = "notifications/autoDismissAfter"
	KeyQuickReplies     = "notifications/quickReplies"
)

var errOutboundFull = errors.New("device command queue full")

// loadPreferences reads every persisted key over the defaults.
func loadPreferences(store SettingsStore) (models.Preferences, error) {
	prefs := models.DefaultPreferences()
	if store == nil {
		return prefs, nil
	}

	targets := []struct {
		key string
		out interface{}
	}{
		{KeyDoNotDisturb, &prefs.DoNotDisturb},
		{KeyAllowedApps, &prefs.AllowedApps},
		{KeyBlockedApps, &prefs.BlockedApps},
		{KeyShowPreviews, &prefs.ShowPreviews},
		{KeyAutoDismissAfter, &prefs.AutoDismissAfterSeconds},
		{KeyQuickReplies, &prefs.QuickReplies},
	}
	for _, target := range targets {
		if _, err := store.GetSetting(target.key, target.out); err != nil {
			return prefs, err
		}
	}
	if prefs.AllowedApps == nil {
		prefs.AllowedApps = []string{}
	}
	if prefs.BlockedApps == nil {
		prefs.BlockedApps = []string{}
	}
	if prefs.QuickReplies == nil {
		prefs.QuickReplies = []string{}
	}
	return prefs, nil
}

// PreferenceSettings returns the preferences keyed the way they are
// persisted. It is used to seed a new data directory.
func PreferenceSettings(prefs models.Preferences) map[string]interface{} {
	return map[string]interface{}{
		KeyDoNotDisturb:     prefs.DoNotDisturb,
		KeyAllowedApps:      cleanList(prefs.AllowedApps),
		KeyBlockedApps:      cleanList(prefs.BlockedApps),
		KeyShowPreviews:     prefs.ShowPreviews,
		KeyAutoDismissAfter: prefs.AutoDismissAfterSeconds,
		KeyQuickReplies:     prefs.QuickReplies,
	}
}

// settingsWriter persists changed preference values off the mutation path.
// Writes to the same key coalesce so only the latest value is stored.
type settingsWriter struct {
	store SettingsStore
	bus   events.Bus

	mtx     sync.Mutex
	pending map[string]interface{}
	wake    chan struct{}
}

func newSettingsWriter(store SettingsStore, bus events.Bus) *settingsWriter {
	return &settingsWriter{
		store:   store,
		bus:     bus,
		pending: make(map[string]interface{}),
		wake:    make(chan struct{}, 1),
	}
}

// put queues a value for writing. It never blocks.
func (w *settingsWriter) put(key string, value interface{}) {
	if w.store == nil {
		return
	}
	w.mtx.Lock()
	w.pending[key] = value
	w.mtx.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *settingsWriter) run(shutdown <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-shutdown:
			w.flush()
			return
		}
	}
}

func (w *settingsWriter) flush() {
	w.mtx.Lock()
	batch := w.pending
	w.pending = make(map[string]interface{})
	w.mtx.Unlock()

	keys := make([]string, 0, len(batch))
	for key := range batch {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := w.store.PutSetting(key, batch[key]); err != nil {
			log.Errorf("Error persisting setting %s: %s", key, err)
			w.bus.Emit(&events.Error{Message: err.Error(), Err: err})
		}
	}
}
