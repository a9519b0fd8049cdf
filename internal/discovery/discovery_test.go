package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *mdns.ServiceEntry
		want  Host
		ok    bool
	}{
		{
			name: "full record",
			entry: &mdns.ServiceEntry{
				AddrV4:     net.IPv4(192, 168, 1, 20),
				Port:       8080,
				InfoFields: []string{"id=cam-1", "signaling=ws://cam.local:8080/ws"},
			},
			want: Host{ID: "cam-1", SignalingURL: "ws://cam.local:8080/ws", Addr: "192.168.1.20:8080"},
			ok:   true,
		},
		{
			name: "signaling derived from address",
			entry: &mdns.ServiceEntry{
				AddrV4:     net.IPv4(10, 0, 0, 5),
				Port:       9000,
				InfoFields: []string{"id=cam-2", "junk"},
			},
			want: Host{ID: "cam-2", SignalingURL: "ws://10.0.0.5:9000/ws", Addr: "10.0.0.5:9000"},
			ok:   true,
		},
		{
			name:  "no id",
			entry: &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 5), Port: 9000},
		},
		{
			name:  "no address",
			entry: &mdns.ServiceEntry{Port: 9000, InfoFields: []string{"id=cam-3"}},
		},
		{name: "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseEntry(tt.entry)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseEntry() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
