// Package event defines the append-only domain event log. The governance
// core writes events for observability and never reads them back.
package event

import (
	"context"
	"log"
	"time"
)

// Type names a domain event.
type Type string

const (
	// TypeContractInitialized records contract creation.
	TypeContractInitialized Type = "contract.initialized"
	// TypeSessionOpened records a new voting session.
	TypeSessionOpened Type = "session.opened"
	// TypeVoteCast records a party's first vote in a session.
	TypeVoteCast Type = "vote.cast"
	// TypeVoteRevised records a change to a recorded vote.
	TypeVoteRevised Type = "vote.revised"
	// TypeSessionClosed records a session reaching its outcome.
	TypeSessionClosed Type = "session.closed"
	// TypeCessionRequested records the first phase of a cession handshake.
	TypeCessionRequested Type = "cession.requested"
	// TypeCessionAccepted records the resolving phase of a cession handshake.
	TypeCessionAccepted Type = "cession.accepted"
)

// Event is one entry in a contract's audit log.
type Event struct {
	ContractID    string
	Type          Type
	PartyID       string
	SessionNumber int
	RequestID     string
	Detail        string
	Timestamp     time.Time
}

// Sink receives domain events. Implementations must treat the stream as
// append-only.
type Sink interface {
	AppendEvent(ctx context.Context, evt Event) error
}

// LogSink writes events as structured log lines. It backs local tooling
// and tests where no durable event store is configured.
type LogSink struct{}

// AppendEvent logs the event in key=value form.
func (LogSink) AppendEvent(_ context.Context, evt Event) error {
	log.Printf(
		"contract event contract_id=%s type=%s party_id=%s session=%d request_id=%s detail=%q",
		evt.ContractID,
		evt.Type,
		evt.PartyID,
		evt.SessionNumber,
		evt.RequestID,
		evt.Detail,
	)
	return nil
}

// NopSink discards events.
type NopSink struct{}

// AppendEvent drops the event.
func (NopSink) AppendEvent(context.Context, Event) error { return nil }
