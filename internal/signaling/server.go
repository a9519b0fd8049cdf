package signaling

import (
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type conn struct {
	id         string
	clientType string
	ws         *websocket.Conn
	mu         sync.Mutex
}

func (c *conn) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

// Server relays signaling messages between registered clients. Messages
// with a Target are forwarded with From filled in; everything else is
// answered by the server itself.
type Server struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*conn
}

// NewServer returns a relay. A nil logger discards output.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger.With("component", "signaling-server"),
		clients: make(map[string]*conn),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade", "err", err)
		return
	}
	defer ws.Close()

	var reg Message
	if err := ws.ReadJSON(&reg); err != nil {
		return
	}
	if reg.Type != TypeRegister || reg.ID == "" {
		_ = ws.WriteJSON(Message{Type: TypeError, Msg: "first message must register an id"})
		return
	}

	c := &conn{id: reg.ID, clientType: reg.ClientType, ws: ws}
	if !s.add(c) {
		_ = c.write(Message{Type: TypeError, Msg: "id already registered"})
		return
	}
	defer s.remove(c)

	s.logger.Info("client registered", "id", c.id, "type", c.clientType)
	if err := c.write(Message{Type: TypeRegistered, ID: c.id, Timestamp: time.Now().UnixMilli()}); err != nil {
		return
	}
	if c.clientType == ClientTypeHost {
		s.broadcastHosts()
	}

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		s.handle(c, msg)
	}
}

func (s *Server) handle(c *conn, msg Message) {
	switch msg.Type {
	case TypePing:
		_ = c.write(Message{Type: TypePong, Timestamp: time.Now().UnixMilli()})
	case TypeListHosts:
		_ = c.write(Message{Type: TypeHosts, List: s.hosts()})
	case TypeOffer, TypeAnswer, TypeICECandidate, TypeHangup, TypeError:
		s.relay(c, msg)
	default:
		s.logger.Debug("dropping message", "from", c.id, "type", msg.Type)
	}
}

func (s *Server) relay(from *conn, msg Message) {
	s.mu.Lock()
	target := s.clients[msg.Target]
	s.mu.Unlock()

	if target == nil {
		if msg.Type == TypeOffer {
			_ = from.write(Message{
				Type:   TypeError,
				From:   msg.Target,
				Reason: ReasonUnknownTarget,
				Msg:    "no such host: " + msg.Target,
			})
		}
		return
	}
	msg.From = from.id
	msg.Target = ""
	if err := target.write(msg); err != nil {
		s.logger.Warn("relay", "to", target.id, "type", msg.Type, "err", err)
	}
}

func (s *Server) add(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.clients[c.id]; taken {
		return false
	}
	s.clients[c.id] = c
	return true
}

func (s *Server) remove(c *conn) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()

	s.logger.Info("client left", "id", c.id)
	if c.clientType != ClientTypeHost {
		return
	}
	for _, other := range s.snapshot() {
		_ = other.write(Message{Type: TypeHostDisconnected, HostID: c.id})
	}
	s.broadcastHosts()
}

func (s *Server) snapshot() []*conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*conn, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Server) hosts() []HostInfo {
	var list []HostInfo
	for _, c := range s.snapshot() {
		if c.clientType == ClientTypeHost {
			list = append(list, HostInfo{ID: c.id, Online: true})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Server) broadcastHosts() {
	list := s.hosts()
	for _, c := range s.snapshot() {
		if c.clientType == ClientTypeViewer {
			_ = c.write(Message{Type: TypeHostsUpdated, List: list})
		}
	}
}
