// Package ws carries tdsMsg envelopes over websocket connections.
//
// Each inbound text frame becomes one channel.Event stamped with the
// Origin header of the connection's handshake. Outbound posts are
// fire-and-forget: write errors are logged and counted, never retried.
package ws

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/danmuck/tdsbridge/internal/hub"
	"github.com/danmuck/tdsbridge/internal/observability"
	"github.com/danmuck/tdsbridge/internal/protocol/channel"
	"github.com/danmuck/tdsbridge/internal/protocol/envelope"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"
)

var ErrNoPeer = errors.New("ws: no peer for origin")

// MaxFrameBytes bounds a single inbound frame.
const MaxFrameBytes = 1 << 20

type peer struct {
	id     string
	origin string
	conn   *websocket.Conn

	writeMu sync.Mutex
}

func (p *peer) send(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return websocket.Message.Send(p.conn, string(data))
}

type Server struct {
	node string
	hub  *hub.Hub

	mu    sync.RWMutex
	peers map[string]*peer
}

func NewServer(node string, h *hub.Hub) *Server {
	return &Server{
		node:  node,
		hub:   h,
		peers: make(map[string]*peer),
	}
}

// Handler upgrades requests to websocket connections. The handshake
// accepts any origin; origin policy is applied per event by the
// subscriber.
func (s *Server) Handler() http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   s.serve,
	}
}

func (s *Server) serve(conn *websocket.Conn) {
	conn.MaxPayloadBytes = MaxFrameBytes
	p := &peer{id: uuid.NewString(), conn: conn}
	if req := conn.Request(); req != nil {
		p.origin = req.Header.Get("Origin")
	}
	s.add(p)
	defer func() {
		s.remove(p)
		_ = conn.Close()
	}()
	logger := log.With().Str("peer", p.id).Str("origin", p.origin).Logger()
	logger.Info().Msg("ws peer connected")

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn().Err(err).Msg("ws receive failed")
			}
			logger.Info().Msg("ws peer disconnected")
			return
		}
		s.hub.Publish(channel.Event{Origin: p.origin, Data: data})
	}
}

func (s *Server) add(p *peer) {
	s.mu.Lock()
	s.peers[p.id] = p
	n := len(s.peers)
	s.mu.Unlock()
	observability.SetPeers(s.node, n)
}

func (s *Server) remove(p *peer) {
	s.mu.Lock()
	delete(s.peers, p.id)
	n := len(s.peers)
	s.mu.Unlock()
	observability.SetPeers(s.node, n)
}

// Peers returns the number of connected peers.
func (s *Server) Peers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

func (s *Server) matching(origin string) []*peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		if origin == "" || p.origin == origin {
			out = append(out, p)
		}
	}
	return out
}

// Post sends env to every peer connected from origin.
func (s *Server) Post(origin string, env envelope.Envelope) error {
	if origin == "" {
		return ErrNoPeer
	}
	return s.deliver(origin, env)
}

// Broadcast sends env to every connected peer.
func (s *Server) Broadcast(env envelope.Envelope) error {
	return s.deliver("", env)
}

func (s *Server) deliver(origin string, env envelope.Envelope) error {
	data, err := envelope.Marshal(env)
	if err != nil {
		return err
	}
	targets := s.matching(origin)
	if len(targets) == 0 {
		observability.RecordOutbound(s.node, string(env.Kind()), false)
		return ErrNoPeer
	}
	for _, p := range targets {
		if err := p.send(data); err != nil {
			log.Warn().Err(err).Str("peer", p.id).Str("kind", string(env.Kind())).Msg("ws send failed")
			observability.RecordOutbound(s.node, string(env.Kind()), false)
			continue
		}
		observability.RecordOutbound(s.node, string(env.Kind()), true)
	}
	return nil
}
