package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/cpacia/dashlink/models"
)

// Notifications returns the active list, most recent first.
func (e *Engine) Notifications() []models.Notification {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.store.snapshot(e.store.active, nil)
}

// GetNotification returns the active or snoozed notification with the ID.
func (e *Engine) GetNotification(id string) (models.Notification, error) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	n := e.store.find(id)
	if n == nil {
		return models.Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n.Copy(), nil
}

// NotificationsFromApp returns the active notifications from the app.
func (e *Engine) NotificationsFromApp(appID string) []models.Notification {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.store.snapshot(e.store.active, func(n *models.Notification) bool {
		return n.AppID == appID
	})
}

// NotificationsByCategory returns the active notifications in the category.
func (e *Engine) NotificationsByCategory(category models.Category) []models.Notification {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.store.snapshot(e.store.active, func(n *models.Notification) bool {
		return n.Category == category
	})
}

// Snoozed returns the parked notifications ordered by wake time.
func (e *Engine) Snoozed() []models.Notification {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	out := make([]models.Notification, 0, len(e.store.parked))
	for _, p := range e.store.parked {
		out = append(out, p.n.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SnoozedUntil.Equal(*b.SnoozedUntil) {
			return a.ID < b.ID
		}
		return a.SnoozedUntil.Before(*b.SnoozedUntil)
	})
	return out
}

// History returns the dismissed notifications, most recent first.
func (e *Engine) History() []models.Notification {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.store.snapshot(e.store.history, nil)
}

// QuickReplies returns the quick reply templates.
func (e *Engine) QuickReplies() []string {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return append([]string{}, e.prefs.QuickReplies...)
}

// Count returns the size of the active list.
func (e *Engine) Count() int {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return len(e.store.active)
}

// HasUnread reports whether any active notification is unread.
func (e *Engine) HasUnread() bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.store.hasUnread
}

// ShowPreviews reports whether views may expose notification text.
func (e *Engine) ShowPreviews() bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.prefs.ShowPreviews
}

// ClearHistory empties the history. It does not affect the active list
// or snoozed notifications.
func (e *Engine) ClearHistory() error {
	return e.submit("clearHistory", func(now time.Time) {
		e.store.clearHistory()
	})
}
