package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/tdsbridge/internal/hub"
	"github.com/danmuck/tdsbridge/internal/node"
	"github.com/danmuck/tdsbridge/internal/observability"
	"github.com/danmuck/tdsbridge/internal/protocol/origin"
	"github.com/danmuck/tdsbridge/internal/transport/ws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const DefaultWSPath = "/ws"

type Options struct {
	Addr string
	// CorsOrigins and OriginPattern together form the CORS allow list;
	// entries may contain `*` wildcards.
	CorsOrigins   []string
	OriginPattern string
	WSPath        string
}

// Server exposes the bridge over HTTP: websocket peers, an HTTP ingress
// for single envelopes, and health and metrics endpoints.
type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	router *gin.Engine
	hub    *hub.Hub
	ws     *ws.Server
	wsPath string
	http   *http.Server
}

var _ node.Node = (*Server)(nil)

func Appear(id string, h *hub.Hub, wsServer *ws.Server, opts Options) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: origin.AllowOriginFunc(append(normalizeOrigins(opts.CorsOrigins), opts.OriginPattern)...),
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	wsPath := strings.TrimSpace(opts.WSPath)
	if wsPath == "" {
		wsPath = DefaultWSPath
	}
	return &Server{
		ID:       id,
		Addr:     opts.Addr,
		Appeared: time.Now(),
		router:   r,
		hub:      h,
		ws:       wsServer,
		wsPath:   wsPath,
	}
}

func (s *Server) NodeID() string {
	return s.ID
}

func (s *Server) Kind() string {
	return "tdsbridge"
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve registers routes and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Serve(ctx context.Context) error {
	s.RegisterRoutes()
	s.http = &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr).Str("ws_path", s.wsPath).Msg("tdsbridge listening")
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// normalizeOrigins trims entries and drops blanks and trailing slashes.
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
