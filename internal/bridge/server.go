// Package bridge streams the terrain mesh and walker pose to WebSocket
// clients, so external tools can mirror the walk in real time.
package bridge

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/demwalk/internal/nav"
	"github.com/Faultbox/demwalk/internal/terrain"
)

// meshMessage is sent once when a client connects.
type meshMessage struct {
	Type     string       `json:"type"`
	Vertices [][3]float64 `json:"vertices"`
	Indices  []uint32     `json:"indices"`
	Colors   [][3]float64 `json:"colors,omitempty"`
}

// poseMessage is broadcast after every simulation step.
type poseMessage struct {
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
	Heading  float64    `json:"heading"`
	Pitch    float64    `json:"pitch"`
}

// Server accepts WebSocket clients and pushes mesh and pose updates.
type Server struct {
	upgrader websocket.Upgrader
	mesh     meshMessage
	httpSrv  *http.Server

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewServer prepares a bridge for the given mesh. Call Start to listen.
func NewServer(m *terrain.Mesh) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			// Local tooling connects from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mesh:    encodeMesh(m),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start listens on addr and serves WebSocket clients in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Handler: mux}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			zap.L().Error("bridge server stopped", zap.Error(err))
		}
	}()

	zap.L().Info("bridge listening", zap.String("addr", addr))
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connMu := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMu
	s.mu.Unlock()

	zap.L().Info("bridge client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Send the mesh once so the client can build its own scene.
	connMu.Lock()
	err = conn.WriteJSON(s.mesh)
	connMu.Unlock()
	if err != nil {
		s.drop(conn)
		return
	}

	// Drain incoming messages until the client disconnects.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastPose pushes the pose to every connected client. Clients that
// fail to receive are dropped.
func (s *Server) BroadcastPose(p nav.Pose) {
	msg := poseMessage{
		Type:     "pose",
		Position: [3]float64{p.Position.X(), p.Position.Y(), p.Position.Z()},
		Heading:  p.Heading,
		Pitch:    p.Pitch,
	}

	s.mu.RLock()
	var failed []*websocket.Conn
	for conn, connMu := range s.clients {
		connMu.Lock()
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range failed {
		s.drop(conn)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects all clients and stops the listener.
func (s *Server) Close() {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.mu.Unlock()

	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}

func encodeMesh(m *terrain.Mesh) meshMessage {
	msg := meshMessage{
		Type:     "mesh",
		Vertices: make([][3]float64, len(m.Vertices)),
		Indices:  make([]uint32, 0, len(m.Triangles)*3),
	}
	for i, v := range m.Vertices {
		msg.Vertices[i] = [3]float64{v.X(), v.Y(), v.Z()}
	}
	for _, tri := range m.Triangles {
		msg.Indices = append(msg.Indices, tri[0], tri[1], tri[2])
	}
	if m.Colors != nil {
		msg.Colors = make([][3]float64, len(m.Colors))
		for i, c := range m.Colors {
			msg.Colors[i] = [3]float64{c.X(), c.Y(), c.Z()}
		}
	}
	return msg
}
