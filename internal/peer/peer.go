// Package peer negotiates the WebRTC link between a camera host and the
// capture app. Only the host's frames data channel is carried.
package peer

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/pion/webrtc/v4"
)

// ICEServers is the default ICE server configuration.
var ICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}},
}

// Signaler is the subset of the signaling client a peer needs.
type Signaler interface {
	SendOffer(target, facing string, payload json.RawMessage) error
	SendAnswer(target string, payload json.RawMessage) error
	SendICECandidate(target string, payload json.RawMessage) error
}

// NewPeerConnection creates a configured PeerConnection. onState, if set,
// observes every connection state change.
func NewPeerConnection(logger *slog.Logger, onState func(webrtc.PeerConnectionState)) (*webrtc.PeerConnection, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := webrtc.Configuration{
		ICEServers: ICEServers,
	}
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Debug("peer connection state", "state", state.String())
		if onState != nil {
			onState(state)
		}
	})
	return pc, nil
}

// Terminal reports whether the connection can no longer carry frames.
func Terminal(state webrtc.PeerConnectionState) bool {
	switch state {
	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
		return true
	}
	return false
}
