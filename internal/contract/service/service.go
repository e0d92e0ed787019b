// Package service exposes the contract governance operations. Each call
// loads the aggregate, applies a domain mutation under a per-contract lock,
// persists the whole record, and appends audit events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
	apperrors "github.com/louisbranch/covenant.space/internal/errors"
	"github.com/louisbranch/covenant.space/internal/id"
	"github.com/louisbranch/covenant.space/internal/platform/requestctx"
	"github.com/louisbranch/covenant.space/internal/storage"
)

// ContractService coordinates contract governance operations over a store.
type ContractService struct {
	store       storage.ContractStore
	events      event.Sink
	clock       func() time.Time
	idGenerator func() (string, error)

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewContractService creates a ContractService with default dependencies.
func NewContractService(store storage.ContractStore, events event.Sink) *ContractService {
	if events == nil {
		events = event.NopSink{}
	}
	return &ContractService{
		store:       store,
		events:      events,
		clock:       time.Now,
		idGenerator: id.NewID,
		locks:       make(map[string]*sync.RWMutex),
	}
}

// contractLock returns the lock serializing access to one contract. Locks
// live for the process lifetime; the registry only grows.
func (s *ContractService) contractLock(contractID string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[contractID]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[contractID] = lock
	}
	return lock
}

// caller returns the verified calling party identity from context.
func (s *ContractService) caller(ctx context.Context) (string, error) {
	partyID := strings.TrimSpace(requestctx.PartyIDFromContext(ctx))
	if partyID == "" {
		return "", apperrors.New(apperrors.CodeCallerRequired, "calling party identity is required")
	}
	return partyID, nil
}

// load fetches a contract aggregate, mapping missing records to a coded
// not-found error.
func (s *ContractService) load(ctx context.Context, contractID string) (domain.Contract, error) {
	if s.store == nil {
		return domain.Contract{}, errors.New("contract store is not configured")
	}
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return domain.Contract{}, apperrors.New(apperrors.CodeNotFound, "contract id is required")
	}
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Contract{}, apperrors.Newf(apperrors.CodeNotFound, "contract %s not found", contractID)
		}
		return domain.Contract{}, err
	}
	return contract, nil
}

// save bumps the aggregate's update time and persists the whole record.
func (s *ContractService) save(ctx context.Context, contract *domain.Contract) error {
	contract.UpdatedAt = s.clock().UTC()
	if err := s.store.PutContract(ctx, *contract); err != nil {
		return fmt.Errorf("persist contract: %w", err)
	}
	return nil
}

// emit appends an audit event. Event loss never fails an already-persisted
// mutation; failures are logged and dropped.
func (s *ContractService) emit(ctx context.Context, evt event.Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = s.clock().UTC()
	}
	if err := s.events.AppendEvent(ctx, evt); err != nil {
		log.Printf("append contract event failed contract_id=%s type=%s error=%v", evt.ContractID, evt.Type, err)
	}
}
