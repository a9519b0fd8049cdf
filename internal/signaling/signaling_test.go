package signaling

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startServer(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(NewServer(nil))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func connect(t *testing.T, url, id, clientType string, h Handler) *Client {
	t.Helper()
	registered := make(chan struct{})
	onRegistered := h.OnRegistered
	h.OnRegistered = func() {
		if onRegistered != nil {
			onRegistered()
		}
		close(registered)
	}
	c := NewClient(url, id, clientType, h, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect(%s) error = %v", id, err)
	}
	t.Cleanup(c.Close)
	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s not registered", id)
	}
	return c
}

type offer struct {
	from, facing string
	payload      json.RawMessage
}

type refusal struct {
	from, reason, msg string
}

func TestRelay_OfferAndRefusal(t *testing.T) {
	url := startServer(t)

	offers := make(chan offer, 1)
	host := connect(t, url, "cam-1", ClientTypeHost, Handler{
		OnOffer: func(from, facing string, payload json.RawMessage) {
			offers <- offer{from, facing, payload}
		},
	})

	refusals := make(chan refusal, 1)
	viewer := connect(t, url, "viewer-1", ClientTypeViewer, Handler{
		OnError: func(from, reason, msg string) {
			refusals <- refusal{from, reason, msg}
		},
	})

	if err := viewer.SendOffer("cam-1", "environment", json.RawMessage(`{"sdp":"x"}`)); err != nil {
		t.Fatalf("SendOffer() error = %v", err)
	}

	select {
	case o := <-offers:
		if o.from != "viewer-1" || o.facing != "environment" || string(o.payload) != `{"sdp":"x"}` {
			t.Errorf("offer = %+v", o)
		}
		if err := host.SendError(o.from, ReasonPermissionDenied, "camera blocked"); err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("host never saw the offer")
	}

	select {
	case r := <-refusals:
		if r.from != "cam-1" || r.reason != ReasonPermissionDenied || r.msg != "camera blocked" {
			t.Errorf("refusal = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("viewer never saw the refusal")
	}
}

func TestRelay_UnknownTarget(t *testing.T) {
	url := startServer(t)

	refusals := make(chan refusal, 1)
	viewer := connect(t, url, "viewer-1", ClientTypeViewer, Handler{
		OnError: func(from, reason, msg string) {
			refusals <- refusal{from, reason, msg}
		},
	})
	if err := viewer.SendOffer("nobody", "user", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-refusals:
		if r.reason != ReasonUnknownTarget || r.from != "nobody" {
			t.Errorf("refusal = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error for unknown target")
	}
}

func TestRelay_HostDisconnectNotifiesViewers(t *testing.T) {
	url := startServer(t)

	gone := make(chan string, 1)
	hosts := make(chan []HostInfo, 4)
	connect(t, url, "viewer-1", ClientTypeViewer, Handler{
		OnHostDisconnected: func(id string) { gone <- id },
		OnHostsUpdated:     func(list []HostInfo) { hosts <- list },
	})
	host := connect(t, url, "cam-1", ClientTypeHost, Handler{})

	select {
	case list := <-hosts:
		if len(list) != 1 || list[0].ID != "cam-1" {
			t.Errorf("hosts = %+v", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no hosts update")
	}

	host.Close()
	select {
	case id := <-gone:
		if id != "cam-1" {
			t.Errorf("disconnected = %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect notice")
	}
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1", "x", ClientTypeViewer, Handler{}, nil)
	if err := c.SendHangup("y"); err != ErrNotConnected {
		t.Errorf("SendHangup() error = %v, want ErrNotConnected", err)
	}
}
