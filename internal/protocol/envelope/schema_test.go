package envelope

import (
	"errors"
	"testing"

	"github.com/danmuck/tdsbridge/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFieldPopulationMatchesKind(t *testing.T) {
	testlog.Start(t)
	for _, env := range []Envelope{
		NewReady("x"),
		NewGo("/p", "tk", nil),
		NewMessage(map[string]any{"k": "v"}),
		NewError(CodePermissionDenied),
		NewError(CodeTicketExpired, "diag"),
		NewRefreshTicket(),
		NewSyncPath(SyncPathPayload{Path: "/p"}),
	} {
		raw, err := Encode(env)
		require.NoError(t, err)
		require.NoError(t, Validate(raw), "kind=%s", env.Kind())
	}
}

func TestErrorEnvelopeWireFields(t *testing.T) {
	testlog.Start(t)
	raw, err := Encode(NewError(100))
	require.NoError(t, err)
	require.NotNil(t, raw.Code)
	assert.Equal(t, 100, *raw.Code)
	assert.Empty(t, raw.Payload)
	assert.Nil(t, raw.Ticket)
	assert.Nil(t, raw.Path)
}

func TestValidateRejectsWrongPopulation(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		data   string
		field  string
		reason string
	}{
		{"ready with payload", `{"type":"tdsMsg.ready","time":1,"payload":{}}`, FieldPayload, ReasonNotAllowed},
		{"go without ticket", `{"type":"tdsMsg.go","time":1,"path":"/","payload":1}`, FieldTicket, ReasonMissing},
		{"go with code", `{"type":"tdsMsg.go","time":1,"ticket":"t","path":"/","payload":1,"code":5}`, FieldCode, ReasonNotAllowed},
		{"message without payload", `{"type":"tdsMsg.message","time":1}`, FieldPayload, ReasonMissing},
		{"error without code", `{"type":"tdsMsg.error","time":1}`, FieldCode, ReasonMissing},
		{"error with path", `{"type":"tdsMsg.error","time":1,"code":100,"path":"/"}`, FieldPath, ReasonNotAllowed},
		{"refresh with ticket", `{"type":"tdsMsg.refreshTicket","time":1,"ticket":"t"}`, FieldTicket, ReasonNotAllowed},
		{"sync path without payload", `{"type":"tdsMsg.syncPath","time":1}`, FieldPayload, ReasonMissing},
		{"missing time", `{"type":"tdsMsg.refreshTicket"}`, FieldTime, ReasonMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.data))
			require.Error(t, err)
			var ve ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.reason, ve.Reason)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	testlog.Start(t)
	_, err := Unmarshal([]byte(`{"type":"tdsMsg.dance","time":1}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Unmarshal([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnmarshalErrorPayloadOptional(t *testing.T) {
	testlog.Start(t)
	env, err := Unmarshal([]byte(`{"type":"tdsMsg.error","time":3,"code":101}`))
	require.NoError(t, err)
	e := env.(Error)
	assert.Equal(t, CodePermissionDenied, e.Code)
	assert.Nil(t, e.Payload)
	assert.EqualValues(t, 3, e.Time())

	env, err = Unmarshal([]byte(`{"type":"tdsMsg.error","time":3,"code":999,"payload":"why"}`))
	require.NoError(t, err)
	e = env.(Error)
	assert.False(t, e.Code.Known())
	assert.NotNil(t, e.Payload)
}

func TestUnmarshalErrorNullPayloadIsAbsent(t *testing.T) {
	testlog.Start(t)
	env, err := Unmarshal([]byte(`{"type":"tdsMsg.error","time":4,"code":100,"payload": null }`))
	require.NoError(t, err)
	e := env.(Error)
	assert.Nil(t, e.Payload)

	data, err := Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tdsMsg.error","time":4,"code":100}`, string(data))
}

func TestUnmarshalSyncPath(t *testing.T) {
	testlog.Start(t)
	env, err := Unmarshal([]byte(`{"type":"tdsMsg.syncPath","time":9,"payload":{"path":"/x","options":{"action":"REPLACE"}}}`))
	require.NoError(t, err)
	sp := env.(SyncPath)
	assert.Equal(t, "/x", sp.Payload.Path)
	assert.Equal(t, ActionReplace, sp.Payload.ResolvedAction())

	_, err = Unmarshal([]byte(`{"type":"tdsMsg.syncPath","time":9,"payload":"nope"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, ErrNil)
}
