package coreiface

import (
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
)

// CoreIface enumerates the interface of the DashNode object in the Core package.
// We primarily use this to get around circular imports though it should serve as the API
// contract for the Core package.
type CoreIface interface {
	// Queries
	Notifications() []models.Notification
	GetNotification(id string) (models.Notification, error)
	NotificationsFromApp(appID string) []models.Notification
	NotificationsByCategory(category models.Category) []models.Notification
	Snoozed() []models.Notification
	History() []models.Notification
	QuickReplies() []string
	Count() int
	HasUnread() bool
	ShowPreviews() bool
	Preferences() models.Preferences
	ActivityLog(limit int) ([]models.NotificationLog, error)
	DeviceConnected() bool

	// Actions
	MarkRead(id string) error
	Dismiss(id string) error
	DismissAll() error
	Open(id string) error
	Reply(id, text string) error
	QuickReply(id string, index int) error
	Snooze(id string, minutes int) error
	ClearHistory() error

	// Preferences
	SetDoNotDisturb(enabled bool) error
	SetShowPreviews(enabled bool) error
	SetAutoDismissAfter(seconds int) error
	SetQuickReplies(replies []string) error
	AllowApp(appID string) error
	BlockApp(appID string) error
	ApplyPreferences(prefs models.Preferences) error

	// Events
	SubscribeEvent(event interface{}) (events.Subscription, error)
}
