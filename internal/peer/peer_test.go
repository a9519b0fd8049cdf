package peer

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
)

type sent struct {
	kind, target, facing string
	payload              json.RawMessage
}

type recordingSignaler struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recordingSignaler) record(s sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, s)
	return nil
}

func (r *recordingSignaler) SendOffer(target, facing string, payload json.RawMessage) error {
	return r.record(sent{"offer", target, facing, payload})
}

func (r *recordingSignaler) SendAnswer(target string, payload json.RawMessage) error {
	return r.record(sent{"answer", target, "", payload})
}

func (r *recordingSignaler) SendICECandidate(target string, payload json.RawMessage) error {
	return r.record(sent{"ice", target, "", payload})
}

func (r *recordingSignaler) first(kind string) (sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.kind == kind {
			return m, true
		}
	}
	return sent{}, false
}

func TestViewerOfferCarriesFramesChannel(t *testing.T) {
	viewerSig := &recordingSignaler{}
	v, err := NewViewer(viewerSig, "cam-1", nil, nil)
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	defer v.Close()

	if err := v.Connect("environment"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	offer, ok := viewerSig.first("offer")
	if !ok {
		t.Fatal("no offer sent")
	}
	if offer.target != "cam-1" || offer.facing != "environment" {
		t.Errorf("offer target/facing = %s/%s", offer.target, offer.facing)
	}
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(offer.payload, &desc); err != nil {
		t.Fatal(err)
	}
	if desc.Type != webrtc.SDPTypeOffer || !strings.Contains(desc.SDP, "webrtc-datachannel") {
		t.Errorf("offer lacks a data channel section:\n%s", desc.SDP)
	}

	hostSig := &recordingSignaler{}
	h, err := NewHost(hostSig, "viewer-1", nil, nil)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	defer h.Close()
	if err := h.HandleOffer(offer.payload); err != nil {
		t.Fatalf("HandleOffer() error = %v", err)
	}
	answer, ok := hostSig.first("answer")
	if !ok || answer.target != "viewer-1" {
		t.Fatalf("answer = %+v, %v", answer, ok)
	}
	if err := v.HandleAnswer(answer.payload); err != nil {
		t.Fatalf("HandleAnswer() error = %v", err)
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		state webrtc.PeerConnectionState
		want  bool
	}{
		{webrtc.PeerConnectionStateConnecting, false},
		{webrtc.PeerConnectionStateConnected, false},
		{webrtc.PeerConnectionStateDisconnected, false},
		{webrtc.PeerConnectionStateFailed, true},
		{webrtc.PeerConnectionStateClosed, true},
	}
	for _, tt := range tests {
		if got := Terminal(tt.state); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}
