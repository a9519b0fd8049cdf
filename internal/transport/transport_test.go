package transport

import (
	"errors"
	"testing"
)

func TestSendFrameWithoutChannel(t *testing.T) {
	tr := NewDataChannelTransport(nil)
	if err := tr.SendFrame([]byte{1}); !errors.Is(err, ErrNoChannel) {
		t.Errorf("SendFrame() error = %v, want ErrNoChannel", err)
	}
}

func TestDeliverUsesLatestCallback(t *testing.T) {
	tr := NewDataChannelTransport(nil)
	tr.deliver([]byte("dropped"))

	var got []string
	tr.OnFrame(func(data []byte) { got = append(got, "a:"+string(data)) })
	tr.deliver([]byte("1"))
	tr.OnFrame(func(data []byte) { got = append(got, "b:"+string(data)) })
	tr.deliver([]byte("2"))

	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("got %v", got)
	}
}
