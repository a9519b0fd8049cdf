package peer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/kyccapture/internal/transport"
)

// Viewer is the capture app's side of the link. It offers the frames data
// channel and receives preview frames on it.
type Viewer struct {
	pc        *webrtc.PeerConnection
	sig       Signaler
	transport *transport.DataChannelTransport
	hostID    string
	logger    *slog.Logger
}

// NewViewer creates a Viewer peer for hostID.
func NewViewer(sig Signaler, hostID string, logger *slog.Logger, onState func(webrtc.PeerConnectionState)) (*Viewer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "viewer", "host", hostID)
	pc, err := NewPeerConnection(logger, onState)
	if err != nil {
		return nil, err
	}

	ordered := false
	maxRetransmits := uint16(0)
	framesDC, err := pc.CreateDataChannel(transport.FramesLabel, &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create frames channel: %w", err)
	}

	v := &Viewer{
		pc:        pc,
		sig:       sig,
		transport: transport.NewDataChannelTransport(framesDC),
		hostID:    hostID,
		logger:    logger,
	}

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
		_ = sig.SendICECandidate(hostID, data)
	})

	return v, nil
}

// Transport returns the frames transport.
func (v *Viewer) Transport() *transport.DataChannelTransport {
	return v.transport
}

// Connect creates an offer asking the host for the given camera facing.
func (v *Viewer) Connect(facing string) error {
	offer, err := v.pc.CreateOffer(nil)
	if err != nil {
		return err
	}

	if err := v.pc.SetLocalDescription(offer); err != nil {
		return err
	}

	offerJSON, err := json.Marshal(offer)
	if err != nil {
		return err
	}

	return v.sig.SendOffer(v.hostID, facing, offerJSON)
}

// HandleAnswer processes an incoming SDP answer.
func (v *Viewer) HandleAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return err
	}
	return v.pc.SetRemoteDescription(answer)
}

// HandleICECandidate adds a remote ICE candidate.
func (v *Viewer) HandleICECandidate(payload json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return err
	}
	return v.pc.AddICECandidate(candidate)
}

// Close shuts down the peer connection.
func (v *Viewer) Close() error {
	if v.pc != nil {
		return v.pc.Close()
	}
	return nil
}
