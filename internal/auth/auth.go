// Package auth checks the tickets carried by GO envelopes.
//
// Tickets are opaque; issuing and expiring them is left to the peer that
// pushes them.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrTicketRejected = errors.New("auth: ticket rejected")

// Validator validates a ticket.
type Validator interface {
	Validate(ticket string) error
}

// StaticTicket accepts a single shared ticket.
// It is intended only for development and proofs of concept.
type StaticTicket struct {
	Ticket string
}

func (s StaticTicket) Validate(ticket string) error {
	if s.Ticket == "" {
		return ErrTicketRejected
	}
	if subtle.ConstantTimeCompare([]byte(s.Ticket), []byte(ticket)) != 1 {
		return ErrTicketRejected
	}
	return nil
}

// TicketSet accepts any of a fixed list of tickets. Blank entries are ignored.
type TicketSet []string

func (s TicketSet) Validate(ticket string) error {
	ok := 0
	for _, known := range s {
		if strings.TrimSpace(known) == "" {
			continue
		}
		ok |= subtle.ConstantTimeCompare([]byte(known), []byte(ticket))
	}
	if ok != 1 {
		return ErrTicketRejected
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(ticket string) error

func (f FuncValidator) Validate(ticket string) error {
	return f(ticket)
}

// AllowAll accepts every ticket, including the empty one.
type AllowAll struct{}

func (AllowAll) Validate(string) error {
	return nil
}
