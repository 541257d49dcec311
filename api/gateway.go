package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/gorilla/mux"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("api")

// ErrGatewayClosed is returned by NotifyWebsockets after Close.
var ErrGatewayClosed = errors.New("gateway closed")

// ServeOption mounts an additional handler on the gateway's top level mux.
type ServeOption func(mux *http.ServeMux) error

type GatewayConfig struct {
	Listener   net.Listener
	NoCors     bool
	AllowedIPs map[string]bool
	Cookie     string
	Username   string
	Password   string
	UseSSL     bool
	SSLCert    string
	SSLKey     string
}

// Gateway represents an HTTP API gateway
type Gateway struct {
	listener  net.Listener
	node      coreiface.CoreIface
	handler   http.Handler
	config    *GatewayConfig
	hub       *hub
	closeOnce sync.Once
}

// NewGateway instantiates a new gateway. The dashboard API is served under
// /v1/ and live updates are pushed over the /ws websocket. Options may
// mount further handlers, such as the device bridge. Every handler sits
// behind the authentication middleware.
func NewGateway(node coreiface.CoreIface, config *GatewayConfig, options ...ServeOption) (*Gateway, error) {
	var (
		g = &Gateway{
			node:     node,
			config:   config,
			listener: config.Listener,
			hub:      newHub(),
		}
		topMux = http.NewServeMux()
	)

	topMux.Handle("/v1/", g.newV1Router())
	topMux.Handle("/ws", newWebsocketHandler(g.hub))

	for _, option := range options {
		if err := option(topMux); err != nil {
			return nil, err
		}
	}

	g.handler = g.AuthenticationMiddleware(topMux)
	if !config.NoCors {
		g.handler = g.CORSAllowAllOriginsMiddleware(g.handler)
	}

	go g.hub.run()
	return g, nil
}

// Close shuts down the Gateway listener and disconnects websocket clients.
func (g *Gateway) Close() error {
	g.closeOnce.Do(g.hub.stop)
	if g.listener == nil {
		return nil
	}
	return g.listener.Close()
}

// Serve begins listening on the configured address.
func (g *Gateway) Serve() error {
	log.Infof("Gateway/API server listening on %s", g.listener.Addr())
	if g.config.UseSSL {
		return http.ServeTLS(g.listener, g.handler, g.config.SSLCert, g.config.SSLKey)
	}
	return http.Serve(g.listener, g.handler)
}

// NotifyWebsockets sanitizes the message and pushes it to every connected
// websocket client.
func (g *Gateway) NotifyWebsockets(i interface{}) error {
	out, err := marshalAndSanitizeJSON(i)
	if err != nil {
		return err
	}
	if !g.hub.broadcast(out) {
		return ErrGatewayClosed
	}
	return nil
}

func (g *Gateway) newV1Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/v1/status", g.handleGETStatus).Methods("GET")

	r.HandleFunc("/v1/notifications", g.handleGETNotifications).Methods("GET")
	r.HandleFunc("/v1/notifications/dismissall", g.handlePOSTDismissAll).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}", g.handleGETNotification).Methods("GET")
	r.HandleFunc("/v1/notifications/{id}/read", g.handlePOSTMarkRead).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}/dismiss", g.handlePOSTDismiss).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}/open", g.handlePOSTOpen).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}/reply", g.handlePOSTReply).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}/quickreply", g.handlePOSTQuickReply).Methods("POST")
	r.HandleFunc("/v1/notifications/{id}/snooze", g.handlePOSTSnooze).Methods("POST")
	r.HandleFunc("/v1/snoozed", g.handleGETSnoozed).Methods("GET")
	r.HandleFunc("/v1/apps/{appID}/notifications", g.handleGETAppNotifications).Methods("GET")
	r.HandleFunc("/v1/categories/{category}/notifications", g.handleGETCategoryNotifications).Methods("GET")
	r.HandleFunc("/v1/history", g.handleGETHistory).Methods("GET")
	r.HandleFunc("/v1/history", g.handleDELETEHistory).Methods("DELETE")
	r.HandleFunc("/v1/log", g.handleGETActivityLog).Methods("GET")

	r.HandleFunc("/v1/preferences", g.handleGETPreferences).Methods("GET")
	r.HandleFunc("/v1/preferences", g.handlePUTPreferences).Methods("PUT")
	r.HandleFunc("/v1/preferences/donotdisturb", g.handlePUTDoNotDisturb).Methods("PUT")
	r.HandleFunc("/v1/preferences/showpreviews", g.handlePUTShowPreviews).Methods("PUT")
	r.HandleFunc("/v1/preferences/autodismiss", g.handlePUTAutoDismiss).Methods("PUT")
	r.HandleFunc("/v1/quickreplies", g.handleGETQuickReplies).Methods("GET")
	r.HandleFunc("/v1/quickreplies", g.handlePUTQuickReplies).Methods("PUT")
	r.HandleFunc("/v1/apps/{appID}/allow", g.handlePOSTAllowApp).Methods("POST")
	r.HandleFunc("/v1/apps/{appID}/block", g.handlePOSTBlockApp).Methods("POST")
	return r
}

// wrapError formats the error as the JSON body of an error response.
func wrapError(err error) string {
	out, merr := marshalAndSanitizeJSON(struct {
		Error string `json:"error"`
	}{err.Error()})
	if merr != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(out)
}

// writeError maps core errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, coreiface.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, coreiface.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, coreiface.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, wrapError(err), status)
}
