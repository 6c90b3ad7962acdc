package bridge

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/tdsbridge/internal/auth"
	"github.com/danmuck/tdsbridge/internal/hub"
	"github.com/danmuck/tdsbridge/internal/protocol/envelope"
	"github.com/danmuck/tdsbridge/internal/server"
	"github.com/danmuck/tdsbridge/internal/transport/ws"
	"github.com/rs/zerolog/log"
)

type ServiceConfig struct {
	Name          string
	ListenAddr    string
	OriginPattern string
	CorsOrigins   []string
	Debug         bool
	Tickets       []string
	WSPath        string
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:          "tdsbridge",
		ListenAddr:    ":9300",
		OriginPattern: "http://localhost:*",
		WSPath:        server.DefaultWSPath,
	}
}

// Service wires the hub, websocket transport, router and HTTP server.
type Service struct {
	cfg    ServiceConfig
	hub    *hub.Hub
	ws     *ws.Server
	server *server.Server
	router *Router
}

func NewService(cfg ServiceConfig, handlers Handlers) (*Service, error) {
	h := hub.New()
	wsServer := ws.NewServer(cfg.Name, h)
	var tickets auth.Validator
	if len(cfg.Tickets) > 0 {
		tickets = auth.TicketSet(cfg.Tickets)
	}
	router, err := NewRouter(h, wsServer, RouterConfig{
		Node:          cfg.Name,
		OriginPattern: cfg.OriginPattern,
		Debug:         cfg.Debug,
		Tickets:       tickets,
	}, withDefaultHandlers(cfg.Name, wsServer, handlers))
	if err != nil {
		return nil, err
	}
	srv := server.Appear(cfg.Name, h, wsServer, server.Options{
		Addr:          cfg.ListenAddr,
		CorsOrigins:   cfg.CorsOrigins,
		OriginPattern: cfg.OriginPattern,
		WSPath:        cfg.WSPath,
	})
	return &Service{cfg: cfg, hub: h, ws: wsServer, server: srv, router: router}, nil
}

func (s *Service) Server() *server.Server {
	return s.server
}

func (s *Service) Hub() *hub.Hub {
	return s.hub
}

func (s *Service) Close() error {
	return s.router.Close()
}

func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer s.Close()
	return s.server.Serve(ctx)
}

// withDefaultHandlers fills unset callbacks with the bridge's own
// behaviour: log, and answer READY with READY so the peer knows both
// sides are up.
func withDefaultHandlers(node string, poster Poster, h Handlers) Handlers {
	logger := log.With().Str("node", node).Logger()
	if h.OnReady == nil {
		h.OnReady = func(e envelope.Ready) {
			logger.Info().Str("origin", e.Origin).Msg("peer ready")
			if err := poster.Post(e.Origin, envelope.NewReady("")); err != nil {
				logger.Debug().Err(err).Str("origin", e.Origin).Msg("ready reply not delivered")
			}
		}
	}
	if h.OnGo == nil {
		h.OnGo = func(from string, e envelope.Go) {
			logger.Info().Str("origin", from).Str("path", e.Path).Msg("go")
		}
	}
	if h.OnMessage == nil {
		h.OnMessage = func(from string, e envelope.Message) {
			logger.Info().Str("origin", from).Msg("message")
		}
	}
	if h.OnSyncPath == nil {
		h.OnSyncPath = func(from string, e envelope.SyncPath) {
			logger.Info().
				Str("origin", from).
				Str("path", e.Payload.Path).
				Str("action", string(e.Payload.ResolvedAction())).
				Msg("sync path")
		}
	}
	if h.OnRefreshTicket == nil {
		h.OnRefreshTicket = func(from string, _ envelope.RefreshTicket) {
			logger.Info().Str("origin", from).Msg("ticket refresh requested")
		}
	}
	if h.OnAbort == nil {
		h.OnAbort = func(from string, e envelope.Error) {
			logger.Warn().Str("origin", from).Stringer("code", e.Code).Msg("operation aborted")
		}
	}
	return h
}

// Normalize trims string fields and fills blanks from defaults.
func (c ServiceConfig) Normalize() ServiceConfig {
	def := DefaultServiceConfig()
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = def.Name
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	c.OriginPattern = strings.TrimSpace(c.OriginPattern)
	c.WSPath = strings.TrimSpace(c.WSPath)
	if c.WSPath == "" {
		c.WSPath = def.WSPath
	}
	return c
}
