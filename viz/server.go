package viz

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/openfluke/primer/trainer"
)

// Message is the envelope broadcast to websocket clients.
type Message struct {
	Type string `json:"type"` // "stage" or "epoch"
	Data any    `json:"data"`
}

// Server exposes the simulator over HTTP for a browser dashboard: structural
// and state snapshots as JSON endpoints, and live stage/epoch events pushed
// to websocket clients. It implements trainer.Observer.
type Server struct {
	tr *trainer.Trainer

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer wraps a trainer for serving. Attach the server as the trainer's
// observer to stream events.
func NewServer(tr *trainer.Trainer) *Server {
	return &Server{
		tr:      tr,
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler:
//
//	GET /network  - network blueprint (layers, sizes, parameter counts)
//	GET /state    - current training state
//	GET /forward  - last completed forward snapshot
//	GET /backprop - last completed backward snapshot
//	GET /ws       - websocket event stream
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/network", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tr.Summary())
	})
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tr.State())
	})
	mux.HandleFunc("/forward", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tr.ForwardSnapshot())
	})
	mux.HandleFunc("/backprop", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tr.BackpropSnapshot())
	})
	mux.Handle("/ws", websocket.Handler(s.handleWS))
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWS(conn *websocket.Conn) {
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Clients only listen; drain until they disconnect.
	buf := make([]byte, 256)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// OnStage implements trainer.Observer.
func (s *Server) OnStage(event trainer.StageEvent) {
	s.broadcast(Message{Type: "stage", Data: event})
}

// OnEpoch implements trainer.Observer.
func (s *Server) OnEpoch(event trainer.EpochEvent) {
	s.broadcast(Message{Type: "epoch", Data: event})
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		if err := websocket.JSON.Send(conn, msg); err != nil {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}
	}
}
