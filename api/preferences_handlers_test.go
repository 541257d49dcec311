package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/cpacia/dashlink/models"
)

func TestPreferencesHandlers(t *testing.T) {
	var applied models.Preferences

	runAPITests(t, apiTests{
		{
			name:   "Get preferences",
			path:   "/v1/preferences",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.preferencesFunc = models.DefaultPreferences
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(models.DefaultPreferences()),
		},
		{
			name:   "Put preferences merges with current",
			path:   "/v1/preferences",
			method: http.MethodPut,
			body:   []byte(`{"doNotDisturb": true, "blockedApps": ["com.spam"]}`),
			setNodeMethods: func(n *mockNode) {
				n.preferencesFunc = models.DefaultPreferences
				n.applyPreferencesFunc = func(prefs models.Preferences) error {
					applied = prefs
					return nil
				}
			},
			statusCode: http.StatusOK,
			expectedResponse: func() ([]byte, error) {
				expected := models.DefaultPreferences()
				expected.DoNotDisturb = true
				expected.BlockedApps = []string{"com.spam"}
				if !reflect.DeepEqual(applied, expected) {
					return nil, fmt.Errorf("applied %v", applied)
				}
				return marshalAndSanitizeJSON(struct{}{})
			},
		},
		{
			name:   "Put do not disturb",
			path:   "/v1/preferences/donotdisturb",
			method: http.MethodPut,
			body:   []byte(`{"enabled": true}`),
			setNodeMethods: func(n *mockNode) {
				n.setDoNotDisturbFunc = func(enabled bool) error {
					if !enabled {
						return errors.New("expected enabled")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Put show previews",
			path:   "/v1/preferences/showpreviews",
			method: http.MethodPut,
			body:   []byte(`{"enabled": false}`),
			setNodeMethods: func(n *mockNode) {
				n.setShowPreviewsFunc = func(enabled bool) error {
					if enabled {
						return errors.New("expected disabled")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Put auto dismiss",
			path:   "/v1/preferences/autodismiss",
			method: http.MethodPut,
			body:   []byte(`{"seconds": 45}`),
			setNodeMethods: func(n *mockNode) {
				n.setAutoDismissAfterFunc = func(seconds int) error {
					if seconds != 45 {
						return errors.New("wrong seconds")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Get quick replies",
			path:   "/v1/quickreplies",
			method: http.MethodGet,
			setNodeMethods: func(n *mockNode) {
				n.quickRepliesFunc = func() []string { return []string{"OK", "On my way"} }
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse([]string{"OK", "On my way"}),
		},
		{
			name:   "Put quick replies",
			path:   "/v1/quickreplies",
			method: http.MethodPut,
			body:   []byte(`["Yes", "No"]`),
			setNodeMethods: func(n *mockNode) {
				n.setQuickRepliesFunc = func(replies []string) error {
					if !reflect.DeepEqual(replies, []string{"Yes", "No"}) {
						return errors.New("wrong replies")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Allow app",
			path:   "/v1/apps/com.apple.MobileSMS/allow",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.allowAppFunc = func(appID string) error {
					if appID != "com.apple.MobileSMS" {
						return errors.New("wrong app")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Block app",
			path:   "/v1/apps/com.spam/block",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.blockAppFunc = func(appID string) error {
					if appID != "com.spam" {
						return errors.New("wrong app")
					}
					return nil
				}
			},
			statusCode:       http.StatusOK,
			expectedResponse: jsonResponse(struct{}{}),
		},
		{
			name:   "Block app internal error",
			path:   "/v1/apps/com.spam/block",
			method: http.MethodPost,
			setNodeMethods: func(n *mockNode) {
				n.blockAppFunc = func(appID string) error {
					return coreiface.ErrInternalServer
				}
			},
			statusCode:       http.StatusInternalServerError,
			expectedResponse: errorResponse(coreiface.ErrInternalServer),
		},
	})
}
