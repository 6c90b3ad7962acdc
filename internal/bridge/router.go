package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/tdsbridge/internal/auth"
	"github.com/danmuck/tdsbridge/internal/observability"
	"github.com/danmuck/tdsbridge/internal/protocol/channel"
	"github.com/danmuck/tdsbridge/internal/protocol/envelope"
	"github.com/danmuck/tdsbridge/internal/protocol/origin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrMissingOriginPattern = errors.New("bridge: origin pattern is required")

// Poster sends an envelope back to the peer(s) at origin.
type Poster interface {
	Post(origin string, env envelope.Envelope) error
}

// Handlers receive envelopes that passed origin, schema and ticket
// checks. Nil callbacks are skipped.
type Handlers struct {
	OnReady         func(envelope.Ready)
	OnGo            func(origin string, e envelope.Go)
	OnMessage       func(origin string, e envelope.Message)
	OnError         func(origin string, e envelope.Error)
	OnRefreshTicket func(origin string, e envelope.RefreshTicket)
	OnSyncPath      func(origin string, e envelope.SyncPath)
	// OnAbort fires for PERMISSION_DENIED errors, after OnError.
	OnAbort func(origin string, e envelope.Error)
}

type RouterConfig struct {
	Node          string
	OriginPattern string
	Debug         bool
	// Tickets checks GO tickets; nil accepts every ticket.
	Tickets auth.Validator
}

// Router is the receiving side of the protocol: it validates each
// inbound event before dispatching on envelope kind.
type Router struct {
	cfg      RouterConfig
	handlers Handlers
	poster   Poster
	origins  origin.Validator
	adapter  *channel.Adapter
	logger   zerolog.Logger
}

func NewRouter(stream channel.Stream, poster Poster, cfg RouterConfig, handlers Handlers) (*Router, error) {
	cfg.OriginPattern = strings.TrimSpace(cfg.OriginPattern)
	if cfg.OriginPattern == "" {
		return nil, ErrMissingOriginPattern
	}
	if cfg.Tickets == nil {
		cfg.Tickets = auth.AllowAll{}
	}
	r := &Router{
		cfg:      cfg,
		handlers: handlers,
		poster:   poster,
		logger:   log.With().Str("component", "bridge.router").Str("node", cfg.Node).Logger(),
	}
	adapter, err := channel.New(stream, r.route, channel.WithDebug(cfg.Debug), channel.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("bridge: subscribe: %w", err)
	}
	r.adapter = adapter
	return r, nil
}

// Close stops routing. It is safe to call more than once.
func (r *Router) Close() error {
	return r.adapter.Close()
}

func (r *Router) route(ev channel.Event) {
	if !r.origins.IsValid(ev.Origin, r.cfg.OriginPattern) {
		r.logger.Warn().Str("origin", ev.Origin).Str("pattern", r.cfg.OriginPattern).Msg("origin rejected")
		observability.RecordInbound(r.cfg.Node, "", observability.OutcomeOriginRejected)
		return
	}
	env, err := envelope.Unmarshal(ev.Data)
	if err != nil {
		r.logger.Warn().Err(err).Str("origin", ev.Origin).Msg("malformed envelope")
		observability.RecordInbound(r.cfg.Node, "", observability.OutcomeMalformed)
		return
	}
	kind := string(env.Kind())

	switch e := env.(type) {
	case envelope.Ready:
		e.Origin = ev.Origin
		if r.handlers.OnReady != nil {
			r.handlers.OnReady(e)
		}
	case envelope.Go:
		if err := r.cfg.Tickets.Validate(e.Ticket); err != nil {
			r.logger.Warn().Err(err).Str("origin", ev.Origin).Str("path", e.Path).Msg("go ticket rejected")
			observability.RecordInbound(r.cfg.Node, kind, observability.OutcomeTicketRejected)
			r.post(ev.Origin, envelope.NewError(envelope.CodeTicketExpired))
			return
		}
		if r.handlers.OnGo != nil {
			r.handlers.OnGo(ev.Origin, e)
		}
	case envelope.Message:
		if r.handlers.OnMessage != nil {
			r.handlers.OnMessage(ev.Origin, e)
		}
	case envelope.Error:
		r.handleError(ev.Origin, e)
	case envelope.RefreshTicket:
		if r.handlers.OnRefreshTicket != nil {
			r.handlers.OnRefreshTicket(ev.Origin, e)
		}
	case envelope.SyncPath:
		if r.handlers.OnSyncPath != nil {
			r.handlers.OnSyncPath(ev.Origin, e)
		}
	}
	observability.RecordInbound(r.cfg.Node, kind, observability.OutcomeAccepted)
}

// handleError applies the error-code policy: an expired ticket asks the
// peer for a new one, a denied permission aborts the pending operation.
func (r *Router) handleError(from string, e envelope.Error) {
	if r.handlers.OnError != nil {
		r.handlers.OnError(from, e)
	}
	switch e.Code {
	case envelope.CodeTicketExpired:
		r.post(from, envelope.NewRefreshTicket())
	case envelope.CodePermissionDenied:
		if r.handlers.OnAbort != nil {
			r.handlers.OnAbort(from, e)
		}
	default:
		r.logger.Warn().Str("origin", from).Stringer("code", e.Code).Msg("unknown error code")
	}
}

func (r *Router) post(to string, env envelope.Envelope) {
	if r.poster == nil {
		r.logger.Debug().Str("kind", string(env.Kind())).Msg("no poster; reply dropped")
		return
	}
	if err := r.poster.Post(to, env); err != nil {
		r.logger.Warn().Err(err).Str("origin", to).Str("kind", string(env.Kind())).Msg("reply failed")
	}
}
