package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/gorilla/mux"
)

func (g *Gateway) handleGETPreferences(w http.ResponseWriter, r *http.Request) {
	sanitizedJSONResponse(w, g.node.Preferences())
}

// handlePUTPreferences replaces the preferences. Fields missing from the
// body keep their current value.
func (g *Gateway) handlePUTPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := g.node.Preferences()
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	if err := g.node.ApplyPreferences(prefs); err != nil {
		writeError(w, err)
		return
	}
	sanitizedJSONResponse(w, struct{}{})
}

func (g *Gateway) handlePUTDoNotDisturb(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.SetDoNotDisturb(body.Enabled))
}

func (g *Gateway) handlePUTShowPreviews(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.SetShowPreviews(body.Enabled))
}

func (g *Gateway) handlePUTAutoDismiss(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.SetAutoDismissAfter(body.Seconds))
}

func (g *Gateway) handleGETQuickReplies(w http.ResponseWriter, r *http.Request) {
	replies := g.node.QuickReplies()
	if replies == nil {
		replies = []string{}
	}
	sanitizedJSONResponse(w, replies)
}

func (g *Gateway) handlePUTQuickReplies(w http.ResponseWriter, r *http.Request) {
	var replies []string
	if err := json.NewDecoder(r.Body).Decode(&replies); err != nil {
		writeError(w, fmt.Errorf("%w: %s", coreiface.ErrBadRequest, err))
		return
	}
	g.accepted(w, g.node.SetQuickReplies(replies))
}

func (g *Gateway) handlePOSTAllowApp(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.AllowApp(mux.Vars(r)["appID"]))
}

func (g *Gateway) handlePOSTBlockApp(w http.ResponseWriter, r *http.Request) {
	g.accepted(w, g.node.BlockApp(mux.Vars(r)["appID"]))
}

