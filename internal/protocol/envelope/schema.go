package envelope

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Field names as they appear on the wire.
const (
	FieldTime    = "time"
	FieldCode    = "code"
	FieldTicket  = "ticket"
	FieldPath    = "path"
	FieldPayload = "payload"
)

const (
	ReasonUnknownKind = "unknown kind"
	ReasonMissing     = "missing required field"
	ReasonNotAllowed  = "field not allowed for kind"
)

type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("envelope: kind=%q: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("envelope: kind=%q field=%s: %s", e.Kind, e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error {
	if e.Reason == ReasonUnknownKind {
		return ErrUnknownKind
	}
	return ErrMalformed
}

type population struct {
	required []string
	allowed  []string
}

var optionalFields = []string{FieldCode, FieldTicket, FieldPath, FieldPayload}

var populations = map[Kind]population{
	KindReady:         {},
	KindGo:            {required: []string{FieldTicket, FieldPath, FieldPayload}},
	KindMessage:       {required: []string{FieldPayload}},
	KindError:         {required: []string{FieldCode}, allowed: []string{FieldPayload}},
	KindRefreshTicket: {},
	KindSyncPath:      {required: []string{FieldPayload}},
}

func (r Raw) present(field string) bool {
	switch field {
	case FieldTime:
		return r.Time != nil
	case FieldCode:
		return r.Code != nil
	case FieldTicket:
		return r.Ticket != nil
	case FieldPath:
		return r.Path != nil
	case FieldPayload:
		return r.hasPayload()
	default:
		return false
	}
}

// Validate checks that the populated optional fields of r match its
// kind. The first violation is returned, in a fixed field order.
func Validate(r Raw) error {
	pop, ok := populations[r.Type]
	if !ok {
		log.Debug().Str("kind", string(r.Type)).Msg("envelope.Validate unknown kind")
		return ValidationError{Kind: r.Type, Reason: ReasonUnknownKind}
	}
	if !r.present(FieldTime) {
		return ValidationError{Kind: r.Type, Field: FieldTime, Reason: ReasonMissing}
	}
	for _, field := range pop.required {
		if !r.present(field) {
			log.Debug().Str("kind", string(r.Type)).Str("field", field).Msg("envelope.Validate missing field")
			return ValidationError{Kind: r.Type, Field: field, Reason: ReasonMissing}
		}
	}
	for _, field := range optionalFields {
		if !r.present(field) || contains(pop.required, field) || contains(pop.allowed, field) {
			continue
		}
		log.Debug().Str("kind", string(r.Type)).Str("field", field).Msg("envelope.Validate field not allowed")
		return ValidationError{Kind: r.Type, Field: field, Reason: ReasonNotAllowed}
	}
	return nil
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
