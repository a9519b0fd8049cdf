// Package discovery advertises camera hosts on the local network and lets
// the capture app find one without being told its ID.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_kyccam._tcp"

// ErrNotFound is returned when no host answers before the timeout.
var ErrNotFound = errors.New("no camera host found")

// Host is a camera host seen on the network.
type Host struct {
	ID           string
	SignalingURL string
	Addr         string
}

// Advertise announces hostID. signalingURL tells browsers where the host is
// registered; port is the port it is reachable on.
func Advertise(hostID string, port int, signalingURL string) (*mdns.Server, error) {
	info := []string{"id=" + hostID}
	if signalingURL != "" {
		info = append(info, "signaling="+signalingURL)
	}

	service, err := mdns.NewMDNSService(
		hostID,      // instance name
		serviceType, // service
		"",          // domain (.local)
		"",          // hostname (OS hostname)
		port,
		nil, // IPs (auto-detect)
		info,
	)
	if err != nil {
		return nil, fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mDNS server: %w", err)
	}
	return server, nil
}

// Browse returns the first host that answers within timeout.
func Browse(ctx context.Context, timeout time.Duration) (Host, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(&mdns.QueryParam{
			Service:     serviceType,
			Timeout:     timeout,
			Entries:     entries,
			DisableIPv6: true,
		})
	}()

	for {
		select {
		case e := <-entries:
			if h, ok := parseEntry(e); ok {
				return h, nil
			}
		case err := <-errCh:
			if err != nil {
				return Host{}, fmt.Errorf("mDNS query: %w", err)
			}
			// The query has returned; drain anything already queued.
			for {
				select {
				case e := <-entries:
					if h, ok := parseEntry(e); ok {
						return h, nil
					}
				default:
					return Host{}, ErrNotFound
				}
			}
		case <-ctx.Done():
			return Host{}, ctx.Err()
		}
	}
}

func parseEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	h := Host{Addr: net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port))}
	for _, field := range e.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "id":
			h.ID = value
		case "signaling":
			h.SignalingURL = value
		}
	}
	if h.ID == "" {
		return Host{}, false
	}
	if h.SignalingURL == "" {
		h.SignalingURL = "ws://" + h.Addr + "/ws"
	}
	return h, true
}
