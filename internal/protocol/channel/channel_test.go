package channel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/tdsbridge/internal/testutil/testlog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream keeps delivering to handlers even after Unsubscribe, like
// a host whose listener removal silently fails.
type fakeStream struct {
	handlers     map[SubscriptionID]Handler
	unsubscribed []SubscriptionID
	subErr       error
	next         int
}

func newFakeStream() *fakeStream {
	return &fakeStream{handlers: map[SubscriptionID]Handler{}}
}

func (s *fakeStream) Subscribe(h Handler) (SubscriptionID, error) {
	if s.subErr != nil {
		return "", s.subErr
	}
	s.next++
	id := SubscriptionID(string(rune('a' + s.next)))
	s.handlers[id] = h
	return id, nil
}

func (s *fakeStream) Unsubscribe(id SubscriptionID) error {
	if _, ok := s.handlers[id]; !ok {
		return errors.New("unknown id")
	}
	s.unsubscribed = append(s.unsubscribed, id)
	return nil
}

func (s *fakeStream) emit(ev Event) {
	for _, h := range s.handlers {
		h(ev)
	}
}

func TestAdapterForwardsVerbatim(t *testing.T) {
	testlog.Start(t)
	stream := newFakeStream()
	var got []Event
	a, err := New(stream, func(ev Event) { got = append(got, ev) })
	require.NoError(t, err)
	require.Len(t, stream.handlers, 1)

	stream.emit(Event{Origin: "https://a.example.com", Data: []byte(`{"type":"tdsMsg.ready","time":1}`)})
	stream.emit(Event{Origin: "https://evil.com", Data: []byte("garbage")})

	require.Len(t, got, 2)
	assert.Equal(t, "https://a.example.com", got[0].Origin)
	assert.Equal(t, "garbage", string(got[1].Data))
	assert.False(t, a.Closed())
}

func TestAdapterCloseTwice(t *testing.T) {
	testlog.Start(t)
	stream := newFakeStream()
	calls := 0
	a, err := New(stream, func(Event) { calls++ })
	require.NoError(t, err)

	stream.emit(Event{Origin: "o"})
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.True(t, a.Closed())

	stream.emit(Event{Origin: "o"})
	assert.Equal(t, 1, calls)
	assert.Len(t, stream.unsubscribed, 1, "unsubscribe runs once")
	for id := range stream.handlers {
		assert.Equal(t, id, stream.unsubscribed[0], "unsubscribe uses the subscribed id")
	}
}

func TestAdapterCloseFromHandler(t *testing.T) {
	testlog.Start(t)
	stream := newFakeStream()
	calls := 0
	var a *Adapter
	a, err := New(stream, func(Event) {
		calls++
		require.NoError(t, a.Close())
	})
	require.NoError(t, err)

	stream.emit(Event{})
	stream.emit(Event{})
	assert.Equal(t, 1, calls)
}

func TestAdapterDebugLogsOriginAndData(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	stream := newFakeStream()
	_, err := New(stream, func(Event) {}, WithDebug(true), WithLogger(logger))
	require.NoError(t, err)

	stream.emit(Event{Origin: "https://a.example.com", Data: []byte(`{"k":1}`)})
	stream.emit(Event{Origin: "https://b.example.com", Data: []byte("not json")})

	out := buf.String()
	assert.Contains(t, out, `"origin":"https://a.example.com"`)
	assert.Contains(t, out, `"data":{"k":1}`)
	assert.Contains(t, out, `"data":"not json"`)
}

func TestAdapterQuietWithoutDebug(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	stream := newFakeStream()
	_, err := New(stream, func(Event) {}, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	stream.emit(Event{Origin: "o", Data: []byte("{}")})
	assert.Empty(t, buf.String())
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	testlog.Start(t)
	_, err := New(nil, func(Event) {})
	assert.ErrorIs(t, err, ErrNilStream)
	_, err = New(newFakeStream(), nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	stream := newFakeStream()
	stream.subErr = errors.New("boom")
	_, err = New(stream, func(Event) {})
	assert.EqualError(t, err, "boom")
}
