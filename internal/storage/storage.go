package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ContractStore persists contract aggregate records. One record holds the
// whole aggregate: title/detail payloads, the party table, and the
// append-only session and cession sequences.
type ContractStore interface {
	PutContract(ctx context.Context, contract domain.Contract) error
	GetContract(ctx context.Context, id string) (domain.Contract, error)
}

// EventStore persists the append-only domain event log.
type EventStore interface {
	event.Sink
	ListEvents(ctx context.Context, contractID string) ([]event.Event, error)
}
