package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
)

// Preferences returns the current preferences.
func (e *Engine) Preferences() models.Preferences {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.currentPreferences()
}

// currentPreferences must be called with the lock held.
func (e *Engine) currentPreferences() models.Preferences {
	prefs := e.prefs.Copy()
	prefs.DoNotDisturb = e.store.dnd
	prefs.AllowedApps = e.store.policy.Allowed()
	prefs.BlockedApps = e.store.policy.Blocked()
	return prefs
}

// preferencesChanged queues the persisted values and the change event. Must
// be called from the worker.
func (e *Engine) preferencesChanged(keys ...string) {
	prefs := e.currentPreferences()
	for _, key := range keys {
		switch key {
		case KeyDoNotDisturb:
			e.persist.put(key, prefs.DoNotDisturb)
		case KeyAllowedApps:
			e.persist.put(key, prefs.AllowedApps)
		case KeyBlockedApps:
			e.persist.put(key, prefs.BlockedApps)
		case KeyShowPreviews:
			e.persist.put(key, prefs.ShowPreviews)
		case KeyAutoDismissAfter:
			e.persist.put(key, prefs.AutoDismissAfterSeconds)
		case KeyQuickReplies:
			e.persist.put(key, prefs.QuickReplies)
		}
	}
	e.store.emit(&events.PreferencesChanged{Preferences: prefs})
}

// SetDoNotDisturb toggles do-not-disturb. Enabling it moves every active
// notification below urgent priority into history without notifying the
// phone. Disabling it only affects future arrivals.
func (e *Engine) SetDoNotDisturb(enabled bool) error {
	return e.submit("setDoNotDisturb", func(now time.Time) {
		purged := e.store.setDoNotDisturb(enabled, now)
		if len(purged) > 0 {
			log.Infof("Do not disturb purged %d notifications", len(purged))
		}
		e.preferencesChanged(KeyDoNotDisturb)
	})
}

// AllowApp adds the app to the allowed list, removing it from the blocked list.
func (e *Engine) AllowApp(appID string) error {
	if appID == "" {
		return fmt.Errorf("%w: empty app id", coreiface.ErrBadRequest)
	}
	return e.submit("allowApp", func(now time.Time) {
		e.store.allowApp(appID)
		e.preferencesChanged(KeyAllowedApps, KeyBlockedApps)
	})
}

// BlockApp adds the app to the blocked list, removing it from the allowed
// list. Its active notifications move into history without notifying the
// phone.
func (e *Engine) BlockApp(appID string) error {
	if appID == "" {
		return fmt.Errorf("%w: empty app id", coreiface.ErrBadRequest)
	}
	return e.submit("blockApp", func(now time.Time) {
		purged := e.store.blockApp(appID, now)
		if len(purged) > 0 {
			log.Infof("Blocking %s purged %d notifications", appID, len(purged))
		}
		e.preferencesChanged(KeyAllowedApps, KeyBlockedApps)
	})
}

// SetAllowedApps replaces the allowed list.
func (e *Engine) SetAllowedApps(appIDs []string) error {
	appIDs = cleanList(appIDs)
	return e.submit("setAllowedApps", func(now time.Time) {
		e.store.setAllowedApps(appIDs)
		e.preferencesChanged(KeyAllowedApps, KeyBlockedApps)
	})
}

// SetBlockedApps replaces the blocked list and purges active notifications
// from every listed app.
func (e *Engine) SetBlockedApps(appIDs []string) error {
	appIDs = cleanList(appIDs)
	return e.submit("setBlockedApps", func(now time.Time) {
		e.store.setBlockedApps(appIDs, now)
		e.preferencesChanged(KeyAllowedApps, KeyBlockedApps)
	})
}

// SetShowPreviews controls whether views expose notification text.
func (e *Engine) SetShowPreviews(enabled bool) error {
	return e.submit("setShowPreviews", func(now time.Time) {
		e.prefs.ShowPreviews = enabled
		e.preferencesChanged(KeyShowPreviews)
	})
}

// SetAutoDismissAfter sets the auto-dismiss threshold in seconds. Zero or
// less disables auto-dismiss.
func (e *Engine) SetAutoDismissAfter(seconds int) error {
	return e.submit("setAutoDismissAfter", func(now time.Time) {
		e.prefs.AutoDismissAfterSeconds = seconds
		e.scheduler.setSweeping(seconds > 0)
		e.preferencesChanged(KeyAutoDismissAfter)
	})
}

// SetQuickReplies replaces the quick reply templates. Empty templates are
// dropped.
func (e *Engine) SetQuickReplies(replies []string) error {
	cleaned := make([]string, 0, len(replies))
	for _, r := range replies {
		if strings.TrimSpace(r) != "" {
			cleaned = append(cleaned, r)
		}
	}
	return e.submit("setQuickReplies", func(now time.Time) {
		e.prefs.QuickReplies = cleaned
		e.preferencesChanged(KeyQuickReplies)
	})
}

// AddQuickReply appends a template to the quick reply list.
func (e *Engine) AddQuickReply(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReply
	}
	return e.submit("addQuickReply", func(now time.Time) {
		e.prefs.QuickReplies = append(append([]string{}, e.prefs.QuickReplies...), text)
		e.preferencesChanged(KeyQuickReplies)
	})
}

// ApplyPreferences replaces every preference at once, as if each setter had
// been called in turn.
func (e *Engine) ApplyPreferences(prefs models.Preferences) error {
	prefs = prefs.Copy()
	prefs.AllowedApps = cleanList(prefs.AllowedApps)
	prefs.BlockedApps = cleanList(prefs.BlockedApps)
	return e.submit("applyPreferences", func(now time.Time) {
		e.store.setAllowedApps(prefs.AllowedApps)
		e.store.setBlockedApps(prefs.BlockedApps, now)
		e.store.setDoNotDisturb(prefs.DoNotDisturb, now)
		e.prefs.ShowPreviews = prefs.ShowPreviews
		e.prefs.AutoDismissAfterSeconds = prefs.AutoDismissAfterSeconds
		e.prefs.QuickReplies = prefs.QuickReplies
		e.scheduler.setSweeping(prefs.AutoDismissAfterSeconds > 0)
		e.preferencesChanged(KeyDoNotDisturb, KeyAllowedApps, KeyBlockedApps,
			KeyShowPreviews, KeyAutoDismissAfter, KeyQuickReplies)
	})
}

func cleanList(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]bool)
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
