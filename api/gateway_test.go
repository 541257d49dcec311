package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestGateway_NotifyWebsockets(t *testing.T) {
	g, err := NewGateway(&mockNode{}, &GatewayConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	ts := httptest.NewServer(g.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	msg := struct {
		Type  string `json:"type"`
		Title string `json:"title"`
	}{"received", "<script>alert(1)</script>Hello"}

	expected, err := marshalAndSanitizeJSON(msg)
	if err != nil {
		t.Fatal(err)
	}

	// Registration happens asynchronously so keep notifying until the
	// client sees a message.
	received := make(chan []byte, 1)
	go func() {
		_, m, err := conn.ReadMessage()
		if err == nil {
			received <- m
		}
	}()

	timeout := time.After(5 * time.Second)
	for {
		if err := g.NotifyWebsockets(msg); err != nil {
			t.Fatal(err)
		}
		select {
		case m := <-received:
			if string(m) != string(expected) {
				t.Errorf("Expected %s, got %s", string(expected), string(m))
			}
			if strings.Contains(string(m), "<script>") {
				t.Error("Message was not sanitized")
			}
			return
		case <-time.After(50 * time.Millisecond):
		case <-timeout:
			t.Fatal("Timed out waiting for websocket message")
		}
	}
}

func TestGateway_NotifyAfterClose(t *testing.T) {
	g, err := NewGateway(&mockNode{}, &GatewayConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if err := g.NotifyWebsockets(struct{}{}); err != ErrGatewayClosed {
		t.Errorf("Expected ErrGatewayClosed, got %v", err)
	}
}

func TestGateway_ServeOption(t *testing.T) {
	mounted := func(mux *http.ServeMux) error {
		mux.HandleFunc("/v1/device", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		return nil
	}
	g, err := NewGateway(&mockNode{}, &GatewayConfig{}, mounted)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	ts := httptest.NewServer(g.handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/device")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("Expected mounted handler, got status %d", resp.StatusCode)
	}
}
