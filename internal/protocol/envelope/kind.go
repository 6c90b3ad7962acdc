package envelope

import "strconv"

// Kind is the wire tag discriminating an envelope.
type Kind string

const (
	KindReady         Kind = "tdsMsg.ready"
	KindGo            Kind = "tdsMsg.go"
	KindMessage       Kind = "tdsMsg.message"
	KindError         Kind = "tdsMsg.error"
	KindRefreshTicket Kind = "tdsMsg.refreshTicket"
	KindSyncPath      Kind = "tdsMsg.syncPath"
)

var kinds = []Kind{
	KindReady,
	KindGo,
	KindMessage,
	KindError,
	KindRefreshTicket,
	KindSyncPath,
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Code is the numeric code carried by ERROR envelopes. Any integer is
// valid on the wire; only the constants below are named.
type Code int

const (
	CodeTicketExpired    Code = 100
	CodePermissionDenied Code = 101
)

func (c Code) Known() bool {
	return c == CodeTicketExpired || c == CodePermissionDenied
}

func (c Code) String() string {
	switch c {
	case CodeTicketExpired:
		return "ticket_expired"
	case CodePermissionDenied:
		return "permission_denied"
	default:
		return "unknown(" + strconv.Itoa(int(c)) + ")"
	}
}

// Action selects how a SYNC_PATH navigation touches history.
type Action string

const (
	ActionPush    Action = "PUSH"
	ActionReplace Action = "REPLACE"

	// DefaultAction applies when a SYNC_PATH payload carries no options.
	DefaultAction = ActionPush
)

type SyncPathOptions struct {
	Action Action `json:"action"`
}

type SyncPathPayload struct {
	Path    string           `json:"path"`
	Options *SyncPathOptions `json:"options,omitempty"`
}

// ResolvedAction returns the requested action, or DefaultAction when none was given.
func (p SyncPathPayload) ResolvedAction() Action {
	if p.Options == nil || p.Options.Action == "" {
		return DefaultAction
	}
	return p.Options.Action
}
