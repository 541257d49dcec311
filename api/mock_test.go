package api

import (
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
)

type mockNode struct {
	notificationsFunc           func() []models.Notification
	getNotificationFunc         func(id string) (models.Notification, error)
	notificationsFromAppFunc    func(appID string) []models.Notification
	notificationsByCategoryFunc func(category models.Category) []models.Notification
	snoozedFunc                 func() []models.Notification
	historyFunc                 func() []models.Notification
	quickRepliesFunc            func() []string
	countFunc                   func() int
	hasUnreadFunc               func() bool
	showPreviewsFunc            func() bool
	preferencesFunc             func() models.Preferences
	activityLogFunc             func(limit int) ([]models.NotificationLog, error)
	deviceConnectedFunc         func() bool
	markReadFunc                func(id string) error
	dismissFunc                 func(id string) error
	dismissAllFunc              func() error
	openFunc                    func(id string) error
	replyFunc                   func(id, text string) error
	quickReplyFunc              func(id string, index int) error
	snoozeFunc                  func(id string, minutes int) error
	clearHistoryFunc            func() error
	setDoNotDisturbFunc         func(enabled bool) error
	setShowPreviewsFunc         func(enabled bool) error
	setAutoDismissAfterFunc     func(seconds int) error
	setQuickRepliesFunc         func(replies []string) error
	allowAppFunc                func(appID string) error
	blockAppFunc                func(appID string) error
	applyPreferencesFunc        func(prefs models.Preferences) error
	subscribeEventFunc          func(event interface{}) (events.Subscription, error)
}

func (m *mockNode) Notifications() []models.Notification {
	return m.notificationsFunc()
}
func (m *mockNode) GetNotification(id string) (models.Notification, error) {
	return m.getNotificationFunc(id)
}
func (m *mockNode) NotificationsFromApp(appID string) []models.Notification {
	return m.notificationsFromAppFunc(appID)
}
func (m *mockNode) NotificationsByCategory(category models.Category) []models.Notification {
	return m.notificationsByCategoryFunc(category)
}
func (m *mockNode) Snoozed() []models.Notification {
	return m.snoozedFunc()
}
func (m *mockNode) History() []models.Notification {
	return m.historyFunc()
}
func (m *mockNode) QuickReplies() []string {
	return m.quickRepliesFunc()
}
func (m *mockNode) Count() int {
	return m.countFunc()
}
func (m *mockNode) HasUnread() bool {
	return m.hasUnreadFunc()
}
func (m *mockNode) ShowPreviews() bool {
	return m.showPreviewsFunc()
}
func (m *mockNode) Preferences() models.Preferences {
	return m.preferencesFunc()
}
func (m *mockNode) ActivityLog(limit int) ([]models.NotificationLog, error) {
	return m.activityLogFunc(limit)
}
func (m *mockNode) DeviceConnected() bool {
	return m.deviceConnectedFunc()
}
func (m *mockNode) MarkRead(id string) error {
	return m.markReadFunc(id)
}
func (m *mockNode) Dismiss(id string) error {
	return m.dismissFunc(id)
}
func (m *mockNode) DismissAll() error {
	return m.dismissAllFunc()
}
func (m *mockNode) Open(id string) error {
	return m.openFunc(id)
}
func (m *mockNode) Reply(id, text string) error {
	return m.replyFunc(id, text)
}
func (m *mockNode) QuickReply(id string, index int) error {
	return m.quickReplyFunc(id, index)
}
func (m *mockNode) Snooze(id string, minutes int) error {
	return m.snoozeFunc(id, minutes)
}
func (m *mockNode) ClearHistory() error {
	return m.clearHistoryFunc()
}
func (m *mockNode) SetDoNotDisturb(enabled bool) error {
	return m.setDoNotDisturbFunc(enabled)
}
func (m *mockNode) SetShowPreviews(enabled bool) error {
	return m.setShowPreviewsFunc(enabled)
}
func (m *mockNode) SetAutoDismissAfter(seconds int) error {
	return m.setAutoDismissAfterFunc(seconds)
}
func (m *mockNode) SetQuickReplies(replies []string) error {
	return m.setQuickRepliesFunc(replies)
}
func (m *mockNode) AllowApp(appID string) error {
	return m.allowAppFunc(appID)
}
func (m *mockNode) BlockApp(appID string) error {
	return m.blockAppFunc(appID)
}
func (m *mockNode) ApplyPreferences(prefs models.Preferences) error {
	return m.applyPreferencesFunc(prefs)
}
func (m *mockNode) SubscribeEvent(event interface{}) (events.Subscription, error) {
	return m.subscribeEventFunc(event)
}
