// Package channel adapts an inbound cross-context message stream to a
// single handler.
//
// Ownership boundary:
// - subscribe on construction, unsubscribe once on Close
// - optional debug logging of every inbound event
//
// The adapter does not parse envelopes or check origins. Callers do
// that with the envelope and origin packages.
package channel

import (
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNilStream = errors.New("channel: nil stream")
var ErrNilHandler = errors.New("channel: nil handler")

// Event is one inbound message as delivered by the host stream.
type Event struct {
	Origin string
	Data   []byte
}

type Handler func(Event)

// SubscriptionID identifies a registered handler on a Stream.
type SubscriptionID string

// Stream is the host's inbound message stream.
type Stream interface {
	Subscribe(Handler) (SubscriptionID, error)
	Unsubscribe(SubscriptionID) error
}

type Option func(*Adapter)

// WithDebug logs each event's origin and raw data before forwarding.
func WithDebug(debug bool) Option {
	return func(a *Adapter) {
		a.debug = debug
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

type Adapter struct {
	stream  Stream
	handler Handler
	debug   bool
	logger  zerolog.Logger

	id     SubscriptionID
	closed atomic.Bool
}

// New subscribes handler to stream for the lifetime of the adapter.
func New(stream Stream, handler Handler, opts ...Option) (*Adapter, error) {
	if stream == nil {
		return nil, ErrNilStream
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	a := &Adapter{
		stream:  stream,
		handler: handler,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	id, err := stream.Subscribe(a.receive)
	if err != nil {
		return nil, err
	}
	a.id = id
	return a, nil
}

func (a *Adapter) receive(ev Event) {
	if a.closed.Load() {
		return
	}
	if a.debug {
		a.logger.Info().Str("origin", ev.Origin).RawJSON("data", rawOrQuoted(ev.Data)).Msgf("[tdsmsg]<%s>", ev.Origin)
	}
	a.handler(ev)
}

// Close unsubscribes from the stream using the id returned at
// subscription. Later calls return nil and do nothing. Events that
// arrive after Close are dropped even if the stream still delivers them.
// Close may be called from inside the handler.
func (a *Adapter) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	return a.stream.Unsubscribe(a.id)
}

func (a *Adapter) Closed() bool {
	return a.closed.Load()
}

// rawOrQuoted keeps log lines valid JSON when the payload is not.
func rawOrQuoted(data []byte) []byte {
	if json.Valid(data) {
		return data
	}
	quoted, _ := json.Marshal(string(data))
	return quoted
}
