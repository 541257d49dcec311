package events

import (
	"time"

	"github.com/cpacia/dashlink/models"
)

// NotificationReceived is emitted when a record enters the active list,
// either as a new arrival or on return from snooze.
type NotificationReceived struct {
	Notification models.Notification
	Resurfaced   bool
}

// NotificationDismissed is emitted when a record moves into history.
type NotificationDismissed struct {
	ID     string
	Reason models.DismissReason
}

// NotificationUpdated is emitted when fields of an active record change.
type NotificationUpdated struct {
	ID string
}

// NotificationRead is emitted when a record flips from unread to read.
type NotificationRead struct {
	ID string
}

// NotificationSnoozed is emitted when a record is parked.
type NotificationSnoozed struct {
	ID    string
	Until time.Time
}

// NotificationSuppressed is emitted when an inbound notification is not
// admitted because of the app policy or do-not-disturb.
type NotificationSuppressed struct {
	ID     string
	AppID  string
	Reason string
}

// CountChanged carries the new size of the active list.
type CountChanged struct {
	Count int
}

// HasUnreadChanged is emitted only when the value actually flips.
type HasUnreadChanged struct {
	HasUnread bool
}

// UrgentNotification is emitted alongside NotificationReceived for
// urgent priority arrivals.
type UrgentNotification struct {
	Notification models.Notification
}

// ReplySent is emitted after a reply has been recorded for a notification.
type ReplySent struct {
	ID   string
	Text string
}

// PreferencesChanged carries the full preferences after any change.
type PreferencesChanged struct {
	Preferences models.Preferences
}

// ConnectionChanged is emitted when the phone's transport attaches to or
// detaches from the hub.
type ConnectionChanged struct {
	Connected bool
}

// Error reports a non-fatal failure from the engine.
type Error struct {
	Message string
	Err     error
}

// AllNotificationEvents returns one pointer of every event type, suitable
// for subscribing to everything.
func AllNotificationEvents() []interface{} {
	return []interface{}{
		new(NotificationReceived),
		new(NotificationDismissed),
		new(NotificationUpdated),
		new(NotificationRead),
		new(NotificationSnoozed),
		new(NotificationSuppressed),
		new(CountChanged),
		new(HasUnreadChanged),
		new(UrgentNotification),
		new(ReplySent),
		new(PreferencesChanged),
		new(Error),
	}
}
