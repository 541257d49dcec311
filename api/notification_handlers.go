package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/cpacia/dashlink/models"
	"github.com/gorilla/mux"
)

// defaultLogLimit is the number of activity log entries returned when the
// request does not set a limit.
const defaultLogLimit = 50

func (g *Gateway) handleGETStatus(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, struct {
		Count        int  `json:"count"`
		HasUnread    bool `json:"hasUnread"`
		DoNotDisturb bool `json:"doNotDisturb"`
		Connected    bool `json:"connected"`
	}{
		Count:        g.node.Count(),
		HasUnread:    g.node.HasUnread(),
		DoNotDisturb: g.node.Preferences().DoNotDisturb,
		Connected:    g.node.DeviceConnected(),
	})
}

func (g *Gateway) handleGETNotifications(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, g.view(g.node.Notifications()))
}

func (g *Gateway) handleGETNotification(w http.ResponseWriter, r *http.Request) {
	n, err := g.node.GetNotification(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	sanitizedJSONResponse(w, g.view([]models.Notification{n})[0])
}

func (g *Gateway) handleGETSnoozed(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, g.view(g.node.Snoozed()))
}

func (g *Gateway) handleGETAppNotifications(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, g.view(g.node.NotificationsFromApp(mux.Vars(r)["appID"])))
}

func (g *Gateway) handleGETCategoryNotifications(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	sanitizedJSONResponse(w, g.view(g.node.NotificationsByCategory(category)))
}

func (g *Gateway) handleGETHistory(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, g.view(g.node.History()))
}

func (g *Gateway) handleDELETEHistory(w http.ResponseWriter, r *http.Request) {
	if err := g.node.ClearHistory(); err != nil {
		writeError(w, err)
		return
	}
	sanitizedJSONResponse(w, struct{}{})
}

func (g *Gateway) handleGETActivityLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit %q", coreiface.ErrBadRequest, l))
			return
		}
		limit = n
	}
	entries, err := g.node.ActivityLog(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if !g.node.ShowPreviews() {
		for i := range entries {
			entries[i].Title = ""
			if entries[i].Type == models.LogReply {
				entries[i].Detail = ""
			}
		}
	}
	sanitizedJSONResponse(w, entries)
}

func (g *Gateway) handlePOSTDismissAll(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.DismissAll())
}

func (g *Gateway) handlePOSTMarkRead(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.MarkRead(mux.Vars(r)["id"]))
}

func (g *Gateway) handlePOSTDismiss(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.Dismiss(mux.Vars(r)["id"]))
}

func (g *Gateway) handlePOSTOpen(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.Open(mux.Vars(r)["id"]))
}

func (g *Gateway) handlePOSTReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.Reply(mux.Vars(r)["id"], body.Text))
}

func (g *Gateway) handlePOSTQuickReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.QuickReply(mux.Vars(r)["id"], body.Index))
}

func (g *Gateway) handlePOSTSnooze(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.Snooze(mux.Vars(r)["id"], body.Minutes))
}

// accepted writes the response for an action. Actions are applied
// asynchronously so success only means the action was queued.
func (g *Gateway) accepted(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	sanitizedJSONResponse(w, struct{}{})
}

// view withholds notification text when previews are disabled.
func (g *Gateway) view(list []models.Notification) []models.Notification {
	if list == nil {
		list = []models.Notification{}
	}
	if g.node.ShowPreviews() {
		return list
	}
	out := make([]models.Notification, len(list))
	for i, n := range list {
		out[i] = n.Redacted()
	}
	return out
}
