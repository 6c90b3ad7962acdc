package envelope

import (
	"sync"
	"time"
)

// Envelope is one tdsMsg message. The concrete type is one of Ready, Go,
// Message, Error, RefreshTicket or SyncPath.
type Envelope interface {
	Kind() Kind
	// Time is the construction timestamp in milliseconds since epoch.
	Time() int64
	envelope()
}

// Ready signals that a context finished loading. Origin is local
// metadata and is never encoded.
type Ready struct {
	Origin string
	SentAt int64
}

// Go asks the peer to navigate to Path, authorized by Ticket.
type Go struct {
	Path    string
	Ticket  string
	Payload any
	SentAt  int64
}

type Message struct {
	Payload any
	SentAt  int64
}

// Error carries a numeric code. A nil Payload is absent on the wire.
type Error struct {
	Code    Code
	Payload any
	SentAt  int64
}

// RefreshTicket asks the peer to push a fresh ticket.
type RefreshTicket struct {
	SentAt int64
}

// SyncPath asks the peer to sync its route.
type SyncPath struct {
	Payload SyncPathPayload
	SentAt  int64
}

func (Ready) Kind() Kind         { return KindReady }
func (Go) Kind() Kind            { return KindGo }
func (Message) Kind() Kind       { return KindMessage }
func (Error) Kind() Kind         { return KindError }
func (RefreshTicket) Kind() Kind { return KindRefreshTicket }
func (SyncPath) Kind() Kind      { return KindSyncPath }

func (e Ready) Time() int64         { return e.SentAt }
func (e Go) Time() int64            { return e.SentAt }
func (e Message) Time() int64       { return e.SentAt }
func (e Error) Time() int64         { return e.SentAt }
func (e RefreshTicket) Time() int64 { return e.SentAt }
func (e SyncPath) Time() int64      { return e.SentAt }

func (Ready) envelope()         {}
func (Go) envelope()            {}
func (Message) envelope()       {}
func (Error) envelope()         {}
func (RefreshTicket) envelope() {}
func (SyncPath) envelope()      {}

func NewReady(origin string) Ready {
	return Ready{Origin: origin, SentAt: now()}
}

func NewRefreshTicket() RefreshTicket {
	return RefreshTicket{SentAt: now()}
}

func NewSyncPath(payload SyncPathPayload) SyncPath {
	return SyncPath{Payload: payload, SentAt: now()}
}

func NewMessage(payload any) Message {
	return Message{Payload: payload, SentAt: now()}
}

func NewGo(path, ticket string, payload any) Go {
	return Go{Path: path, Ticket: ticket, Payload: payload, SentAt: now()}
}

// NewError builds an ERROR envelope. Only the first payload value is kept.
func NewError(code Code, payload ...any) Error {
	e := Error{Code: code, SentAt: now()}
	if len(payload) > 0 {
		e.Payload = payload[0]
	}
	return e
}

// Visitor handles each envelope kind. Adding a kind breaks every
// implementation at compile time.
type Visitor interface {
	VisitReady(Ready)
	VisitGo(Go)
	VisitMessage(Message)
	VisitError(Error)
	VisitRefreshTicket(RefreshTicket)
	VisitSyncPath(SyncPath)
}

// Visit dispatches env to the matching Visitor method. It reports false
// for a nil envelope.
func Visit(env Envelope, v Visitor) bool {
	switch e := env.(type) {
	case Ready:
		v.VisitReady(e)
	case Go:
		v.VisitGo(e)
	case Message:
		v.VisitMessage(e)
	case Error:
		v.VisitError(e)
	case RefreshTicket:
		v.VisitRefreshTicket(e)
	case SyncPath:
		v.VisitSyncPath(e)
	default:
		return false
	}
	return true
}

var clock = struct {
	sync.Mutex
	now  func() time.Time
	last int64
}{now: time.Now}

// now returns wall-clock milliseconds, never lower than a previous call.
func now() int64 {
	clock.Lock()
	defer clock.Unlock()
	ms := clock.now().UnixMilli()
	if ms < clock.last {
		return clock.last
	}
	clock.last = ms
	return ms
}
