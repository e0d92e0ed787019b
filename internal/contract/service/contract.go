package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
)

// InitializeContract creates a contract from an explicit founding list and
// persists it.
func (s *ContractService) InitializeContract(ctx context.Context, input domain.CreateContractInput) (domain.Contract, error) {
	if s.store == nil {
		return domain.Contract{}, fmt.Errorf("contract store is not configured")
	}

	contract, err := domain.CreateContract(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Contract{}, err
	}

	lock := s.contractLock(contract.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.PutContract(ctx, contract); err != nil {
		return domain.Contract{}, fmt.Errorf("persist contract: %w", err)
	}

	s.emit(ctx, event.Event{
		ContractID: contract.ID,
		Type:       event.TypeContractInitialized,
		Detail:     fmt.Sprintf("rule=%s parties=%d", contract.Rule, len(contract.Parties)),
		Timestamp:  contract.CreatedAt,
	})

	return contract, nil
}

// GetContract returns a consistent snapshot of the whole aggregate.
func (s *ContractService) GetContract(ctx context.Context, contractID string) (domain.Contract, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	return s.load(ctx, contractID)
}

// GetParty returns one party's registry record.
func (s *ContractService) GetParty(ctx context.Context, contractID, partyID string) (domain.Party, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return domain.Party{}, err
	}
	return contract.Party(partyID)
}

// GetPartyCount returns the number of parties holding a non-zero share.
func (s *ContractService) GetPartyCount(ctx context.Context, contractID string) (int, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return 0, err
	}
	return contract.PartyCount(), nil
}

// GetTitle returns the contract's opaque title payload.
func (s *ContractService) GetTitle(ctx context.Context, contractID string) ([]byte, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return contract.Title, nil
}

// GetDetail returns the contract's opaque detail payload.
func (s *ContractService) GetDetail(ctx context.Context, contractID string) ([]byte, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return contract.Detail, nil
}
