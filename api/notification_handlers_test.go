package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/cpacia/dashlink/models"
)

func testNotifications() []models.Notification {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Notification{
		{
			ID:         "ancs_43",
			AppID:      "com.apple.MobileSMS",
			AppName:    "Messages",
			Title:      "Alice",
			Body:       "<b>Running</b> late",
			Category:   models.CategorySocial,
			Priority:   models.PriorityHigh,
			ReceivedAt: ts.Add(time.Minute),
			SurfacedAt: ts.Add(time.Minute),
		},
		{
			ID:         "ancs_42",
			AppID:      "com.apple.mobilecal",
			AppName:    "Calendar",
			Title:      "Standup",
			Body:       "In 10 minutes",
			Category:   models.CategorySchedule,
			Priority:   models.PriorityNormal,
			ReceivedAt: ts,
			SurfacedAt: ts,
			Read:       true,
		},
	}
}

func TestNotificationHandlers(t *testing.T) {
	notFound := fmt.Errorf("%w: ancs_99", coreiface.ErrNotFound)

	runAPITests(t, apiTests{
		{
			name:   "Get notifications",
			path:   "/v1/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsFunc = testNotifications
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()),
		},
		{
			name:   "Get notifications empty",
			path:   "/v1/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsFunc = func() []models.Notification { return nil }
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				return []byte("[]"), nil
			},
		},
		{
			name:   "Get notifications without previews",
			path:   "/v1/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsFunc = testNotifications
				n.showPreviewsFunc = func() bool { return false }
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				list := testNotifications()
				for i := range list {
					list[i].Title = models.PlaceholderTitle
					list[i].Body = models.PlaceholderBody
				}
				return marshalAndSanitizeJSON(list)
			},
		},
		{
			name:   "Get notification",
			path:   "/v1/notifications/ancs_42",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.getNotificationFunc = func(id string) (models.Notification, error) {
					if id != "ancs_42" {
						return models.Notification{}, errors.New("wrong id")
					}
					return testNotifications()[1], nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()[1]),
		},
		{
			name:   "Get notification not found",
			path:   "/v1/notifications/ancs_99",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.getNotificationFunc = func(id string) (models.Notification, error) {
					return models.Notification{}, notFound
				}
			},
			statusCode:       http.StatusNotFound,
			expectedResponse: errorResponse(notFound),
		},
		{
			name:   "Get app notifications",
			path:   "/v1/apps/com.apple.MobileSMS/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsFromAppFunc = func(appID string) []models.Notification {
					var out []models.Notification
					for _, n := range testNotifications() {
						if n.AppID == appID {
							out = append(out, n)
						}
					}
					return out
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()[:1]),
		},
		{
			name:   "Get category notifications by name",
			path:   "/v1/categories/schedule/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsByCategoryFunc = func(category models.Category) []models.Notification {
					if category != models.CategorySchedule {
						return nil
					}
					return testNotifications()[1:]
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()[1:]),
		},
		{
			name:   "Get category notifications by number",
			path:   "/v1/categories/5/notifications",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.notificationsByCategoryFunc = func(category models.Category) []models.Notification {
					if category != models.CategorySchedule {
						return nil
					}
					return testNotifications()[1:]
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()[1:]),
		},
		{
			name:           "Get category notifications bad category",
			path:           "/v1/categories/nope/notifications",
			method:         http.MethodGet,
			setNodeMethods: func(n *mockNode) {},
			statusCode:     http.StatusBadRequest,
			expectedResponse: func() ([]byte, error) {
				_, err := models.ParseCategory("nope")
				return errorResponse(fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))()
			},
		},
		{
			name:   "Get status",
			path:   "/v1/status",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.countFunc = func() int { return 2 }
				n.hasUnreadFunc = func() bool { return true }
				n.preferencesFunc = models.DefaultPreferences
				n.deviceConnectedFunc = func() bool { return true }
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				return []byte("{\n    \"connected\": true,\n    \"count\": 2,\n    \"doNotDisturb\": false,\n    \"hasUnread\": true\n}"), nil
			},
		},
		{
			name:   "Get status while disconnected",
			path:   "/v1/status",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.countFunc = func() int { return 0 }
				n.hasUnreadFunc = func() bool { return false }
				n.preferencesFunc = models.DefaultPreferences
				n.deviceConnectedFunc = func() bool { return false }
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				return []byte("{\n    \"connected\": false,\n    \"count\": 0,\n    \"doNotDisturb\": false,\n    \"hasUnread\": false\n}"), nil
			},
		},
		{
			name:   "Get history",
			path:   "/v1/history",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.historyFunc = testNotifications
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()),
		},
		{
			name:   "Get snoozed",
			path:   "/v1/snoozed",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.snoozedFunc = func() []models.Notification { return testNotifications()[:1] }
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(testNotifications()[:1]),
		},
		{
			name:   "Clear history",
			path:   "/v1/history",
			method: http.MethodDelete,
			setNodeMethods: func(n *mockNode) {
				n.clearHistoryFunc = func() error { return nil }
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
	})
}

func TestActivityLogHandler(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := func() []models.NotificationLog {
		return []models.NotificationLog{
			{ID: "b", NotificationID: "ancs_42", Type: models.LogReply, Detail: "On my way", Timestamp: ts.Add(time.Second)},
			{ID: "a", NotificationID: "ancs_42", Type: models.LogReceived, AppID: "com.apple.mobilecal", Title: "Standup", Timestamp: ts},
		}
	}

	runAPITests(t, apiTests{
		{
			name:   "Get log default limit",
			path:   "/v1/log",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.activityLogFunc = func(limit int) ([]models.NotificationLog, error) {
					if limit != defaultLogLimit {
						return nil, fmt.Errorf("wrong limit %d", limit)
					}
					return entries(), nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(entries()),
		},
		{
			name:   "Get log with limit",
			path:   "/v1/log?limit=1",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.activityLogFunc = func(limit int) ([]models.NotificationLog, error) {
					return entries()[:limit], nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(entries()[:1]),
		},
		{
			name:           "Get log bad limit",
			path:           "/v1/log?limit=abc",
			method:         http.MethodGet,
			setNodeMethods: func(n *mockNode) {},
			statusCode:     http.StatusBadRequest,
			expectedResponse: errorResponse(fmt.Errorf("%w: invalid limit %q", coreiface.ErrBadRequest, "abc")),
		},
		{
			name:   "Get log without previews",
			path:   "/v1/log",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.showPreviewsFunc = func() bool { return false }
				n.activityLogFunc = func(limit int) ([]models.NotificationLog, error) {
					return entries(), nil
				}
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				e := entries()
				e[0].Detail = ""
				e[1].Title = ""
				return marshalAndSanitizeJSON(e)
			},
		},
	})
}

func TestNotificationActionHandlers(t *testing.T) {
	var (
		calledWith string
		outOfRange = fmt.Errorf("%w: quick reply index out of range: 9", coreiface.ErrBadRequest)
		stopped    = fmt.Errorf("%w: engine stopped", coreiface.ErrUnavailable)
	)

	runAPITests(t, apiTests{
		{
			name:   "Mark read",
			path:   "/v1/notifications/ancs_42/read",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.markReadFunc = func(id string) error {
					if id != "ancs_42" {
						return errors.New("wrong id")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Dismiss",
			path:   "/v1/notifications/ancs_42/dismiss",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.dismissFunc = func(id string) error {
					calledWith = id
					return nil
				}
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				if calledWith != "ancs_42" {
					return nil, fmt.Errorf("dismiss called with %s", calledWith)
				}
				return marshalAndSanitizeJSON(struct{}{})
			},
		},
		{
			name:   "Dismiss all",
			path:   "/v1/notifications/dismissall",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.dismissAllFunc = func() error { return nil }
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Open",
			path:   "/v1/notifications/ancs_42/open",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.openFunc = func(id string) error { return nil }
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Reply",
			path:   "/v1/notifications/ancs_42/reply",
			method: http.MethodPost,
			body:   []byte(`{"text": "On my way"}`),
			setNodeMethods: func(n *mockNode) {
				n.replyFunc = func(id, text string) error {
					if id != "ancs_42" || text != "On my way" {
						return errors.New("wrong args")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:           "Reply bad json",
			path:           "/v1/notifications/ancs_42/reply",
			method:         http.MethodPost,
			body:           []byte(`{"text": `),
			setNodeMethods: func(n *mockNode) {},
			statusCode:     http.StatusBadRequest,
			expectedResponse: func() ([]byte, error) {
				return errorResponse(fmt.Errorf("%w: %s", coreiface.ErrBadRequest, "unexpected EOF"))()
			},
		},
		{
			name:   "Quick reply",
			path:   "/v1/notifications/ancs_42/quickreply",
			method: http.MethodPost,
			body:   []byte(`{"index": 3}`),
			setNodeMethods: func(n *mockNode) {
				n.quickReplyFunc = func(id string, index int) error {
					if index != 3 {
						return errors.New("wrong index")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Quick reply out of range",
			path:   "/v1/notifications/ancs_42/quickreply",
			method: http.MethodPost,
			body:   []byte(`{"index": 9}`),
			setNodeMethods: func(n *mockNode) {
				n.quickReplyFunc = func(id string, index int) error {
					return outOfRange
				}
			},
			statusCode:       http.StatusBadRequest,
			expectedResponse: errorResponse(outOfRange),
		},
		{
			name:   "Snooze",
			path:   "/v1/notifications/ancs_42/snooze",
			method: http.MethodPost,
			body:   []byte(`{"minutes": 1}`),
			setNodeMethods: func(n *mockNode) {
				n.snoozeFunc = func(id string, minutes int) error {
					if minutes != 1 {
						return errors.New("wrong minutes")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Engine stopped",
			path:   "/v1/notifications/ancs_42/dismiss",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.dismissFunc = func(id string) error { return stopped }
			},
			statusCode:       http.StatusServiceUnavailable,
			expectedResponse: errorResponse(stopped),
		},
		{
			name:           "Wrong method",
			path:           "/v1/notifications/ancs_42/dismiss",
			method:         http.MethodGet,
			setNodeMethods: func(n *mockNode) {},
			statusCode:     http.StatusMethodNotAllowed,
			expectedResponse: func() ([]byte, error) {
				return []byte{}, nil
			},
		},
	})
}
