package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
)

// AuthCookieName is the name for the authentication cookie
const AuthCookieName = "DashLink_Auth_Cookie"

// AuthenticationMiddleware is a function which will be called for each request.
// It checks if the IP is on the whitelist and validates either the cookie
// authentication or basic authentication, if set in the config.
func (g *Gateway) AuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.config.AllowedIPs) > 0 {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !g.config.AllowedIPs[host] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		if g.config.Cookie != "" {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || g.config.Cookie != cookie.Value {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		if g.config.Username != "" && g.config.Password != "" {
			username, password, ok := r.BasicAuth()
			h := sha256.Sum256([]byte(password))
			password = hex.EncodeToString(h[:])
			if !ok || username != g.config.Username || password != g.config.Password {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSAllowAllOriginsMiddleware allows cross origin requests from any
// dashboard web view.
func (g *Gateway) CORSAllowAllOriginsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
