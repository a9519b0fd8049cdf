package transport

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
)

// FramesLabel is the data channel label carrying JPEG preview frames.
const FramesLabel = "frames"

// ErrNoChannel is returned when sending before the frames channel exists.
var ErrNoChannel = errors.New("frames data channel not set")

// DataChannelTransport carries preview frames over a WebRTC data channel.
type DataChannelTransport struct {
	mu       sync.Mutex
	framesDC *webrtc.DataChannel
	onFrame  func(data []byte)
	onOpen   func()
}

var (
	_ FrameSender   = (*DataChannelTransport)(nil)
	_ FrameReceiver = (*DataChannelTransport)(nil)
)

// NewDataChannelTransport wraps the frames channel. dc may be nil and set
// later with SetFramesChannel.
func NewDataChannelTransport(dc *webrtc.DataChannel) *DataChannelTransport {
	t := &DataChannelTransport{}
	if dc != nil {
		t.SetFramesChannel(dc)
	}
	return t
}

func (t *DataChannelTransport) SendFrame(data []byte) error {
	t.mu.Lock()
	dc := t.framesDC
	t.mu.Unlock()
	if dc == nil {
		return ErrNoChannel
	}
	return dc.Send(data)
}

func (t *DataChannelTransport) OnFrame(cb func(data []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFrame = cb
}

// OnOpen registers cb to run when the frames channel opens.
func (t *DataChannelTransport) OnOpen(cb func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = cb
}

// SetFramesChannel sets or replaces the frames channel (used when receiving
// negotiated channels).
func (t *DataChannelTransport) SetFramesChannel(dc *webrtc.DataChannel) {
	t.mu.Lock()
	t.framesDC = dc
	t.mu.Unlock()

	dc.OnOpen(func() {
		t.mu.Lock()
		cb := t.onOpen
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.deliver(msg.Data)
	})
}

func (t *DataChannelTransport) deliver(data []byte) {
	t.mu.Lock()
	cb := t.onFrame
	t.mu.Unlock()
	if cb != nil {
		cb(data)
	}
}
