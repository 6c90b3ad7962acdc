// Package hub is an in-process inbound message stream.
//
// It stands in for the host environment's message dispatch: transports
// publish events, channel adapters subscribe to them.
package hub

import (
	"errors"
	"sync"

	"github.com/danmuck/tdsbridge/internal/protocol/channel"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrUnknownSubscription = errors.New("hub: unknown subscription")

type subscriber struct {
	id      channel.SubscriptionID
	handler channel.Handler
}

// Hub delivers each published event to every current subscriber, in
// subscription order, on the publisher's goroutine.
type Hub struct {
	mu   sync.RWMutex
	subs []subscriber
}

var _ channel.Stream = (*Hub)(nil)

func New() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(handler channel.Handler) (channel.SubscriptionID, error) {
	if handler == nil {
		return "", channel.ErrNilHandler
	}
	id := channel.SubscriptionID(uuid.NewString())
	h.mu.Lock()
	h.subs = append(h.subs, subscriber{id: id, handler: handler})
	h.mu.Unlock()
	log.Debug().Str("subscription", string(id)).Msg("hub.Subscribe")
	return id, nil
}

func (h *Hub) Unsubscribe(id channel.SubscriptionID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, sub := range h.subs {
		if sub.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			log.Debug().Str("subscription", string(id)).Msg("hub.Unsubscribe")
			return nil
		}
	}
	return ErrUnknownSubscription
}

// Publish delivers ev synchronously. Subscribers added or removed by a
// handler take effect for the next event.
func (h *Hub) Publish(ev channel.Event) int {
	h.mu.RLock()
	subs := h.subs
	h.mu.RUnlock()
	for _, sub := range subs {
		sub.handler(ev)
	}
	return len(subs)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
