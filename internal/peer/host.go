package peer

import (
	"encoding/json"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/kyccapture/internal/transport"
)

// Host is the camera host's side of the link for one viewer. It answers the
// viewer's offer and streams frames on the channel the viewer opened.
type Host struct {
	pc        *webrtc.PeerConnection
	sig       Signaler
	transport *transport.DataChannelTransport
	viewerID  string
	logger    *slog.Logger
}

// NewHost creates a Host peer serving viewerID.
func NewHost(sig Signaler, viewerID string, logger *slog.Logger, onState func(webrtc.PeerConnectionState)) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "host-peer", "viewer", viewerID)
	pc, err := NewPeerConnection(logger, onState)
	if err != nil {
		return nil, err
	}

	h := &Host{
		pc:        pc,
		sig:       sig,
		transport: transport.NewDataChannelTransport(nil),
		viewerID:  viewerID,
		logger:    logger,
	}

	// Accept the frames channel from the viewer.
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		logger.Debug("data channel received", "label", dc.Label())
		if dc.Label() == transport.FramesLabel {
			h.transport.SetFramesChannel(dc)
		}
	})

	// ICE candidate handling.
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			logger.Warn("marshal ICE candidate", "err", err)
			return
		}
		_ = sig.SendICECandidate(viewerID, data)
	})

	return h, nil
}

// Transport returns the frames transport.
func (h *Host) Transport() *transport.DataChannelTransport {
	return h.transport
}

// ViewerID is the peer this host is serving.
func (h *Host) ViewerID() string { return h.viewerID }

// HandleOffer processes the viewer's offer and sends an answer.
func (h *Host) HandleOffer(payload json.RawMessage) error {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return err
	}

	if err := h.pc.SetRemoteDescription(offer); err != nil {
		return err
	}

	answer, err := h.pc.CreateAnswer(nil)
	if err != nil {
		return err
	}

	if err := h.pc.SetLocalDescription(answer); err != nil {
		return err
	}

	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return err
	}

	return h.sig.SendAnswer(h.viewerID, answerJSON)
}

// HandleICECandidate adds a remote ICE candidate.
func (h *Host) HandleICECandidate(payload json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return err
	}
	return h.pc.AddICECandidate(candidate)
}

// Close shuts down the peer connection.
func (h *Host) Close() error {
	if h.pc != nil {
		return h.pc.Close()
	}
	return nil
}
