package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
)

// RequestRightCession opens a right-cession handshake. The calling party is
// the requester and may be an outsider to the contract.
func (s *ContractService) RequestRightCession(ctx context.Context, contractID, targetID string) (domain.CessionRequest, error) {
	return s.requestCession(ctx, contractID, targetID, domain.CessionRight, 0)
}

// RequestShareCession opens a share-cession handshake for the given amount.
func (s *ContractService) RequestShareCession(ctx context.Context, contractID, targetID string, amount int64) (domain.CessionRequest, error) {
	return s.requestCession(ctx, contractID, targetID, domain.CessionShare, amount)
}

func (s *ContractService) requestCession(ctx context.Context, contractID, targetID string, kind domain.CessionKind, amount int64) (domain.CessionRequest, error) {
	partyID, err := s.caller(ctx)
	if err != nil {
		return domain.CessionRequest{}, err
	}

	lock := s.contractLock(contractID)
	lock.Lock()
	defer lock.Unlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return domain.CessionRequest{}, err
	}

	var request domain.CessionRequest
	switch kind {
	case domain.CessionRight:
		request, err = contract.RequestRightCession(partyID, targetID, s.clock, s.idGenerator)
	case domain.CessionShare:
		request, err = contract.RequestShareCession(partyID, targetID, amount, s.clock, s.idGenerator)
	default:
		return domain.CessionRequest{}, fmt.Errorf("unknown cession kind %d", kind)
	}
	if err != nil {
		return domain.CessionRequest{}, err
	}
	if err := s.save(ctx, &contract); err != nil {
		return domain.CessionRequest{}, err
	}

	s.emit(ctx, event.Event{
		ContractID: contract.ID,
		Type:       event.TypeCessionRequested,
		PartyID:    partyID,
		RequestID:  request.ID,
		Detail:     fmt.Sprintf("kind=%s target=%s amount=%d", request.Kind, request.TargetID, request.Amount),
		Timestamp:  request.CreatedAt,
	})

	return request, nil
}

// AcceptRightCession resolves a right-cession request. Only the targeted
// party may accept, and the transfer applies immediately.
func (s *ContractService) AcceptRightCession(ctx context.Context, contractID, requestID string) error {
	return s.acceptCession(ctx, contractID, requestID, domain.CessionRight)
}

// AcceptShareCession resolves a share-cession request, re-checking the
// target's balance at acceptance time.
func (s *ContractService) AcceptShareCession(ctx context.Context, contractID, requestID string) error {
	return s.acceptCession(ctx, contractID, requestID, domain.CessionShare)
}

func (s *ContractService) acceptCession(ctx context.Context, contractID, requestID string, kind domain.CessionKind) error {
	partyID, err := s.caller(ctx)
	if err != nil {
		return err
	}

	lock := s.contractLock(contractID)
	lock.Lock()
	defer lock.Unlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return err
	}

	switch kind {
	case domain.CessionRight:
		err = contract.AcceptRightCession(requestID, partyID, s.clock)
	case domain.CessionShare:
		err = contract.AcceptShareCession(requestID, partyID, s.clock)
	default:
		return fmt.Errorf("unknown cession kind %d", kind)
	}
	if err != nil {
		return err
	}
	if err := s.save(ctx, &contract); err != nil {
		return err
	}

	s.emit(ctx, event.Event{
		ContractID: contract.ID,
		Type:       event.TypeCessionAccepted,
		PartyID:    partyID,
		RequestID:  requestID,
		Detail:     fmt.Sprintf("kind=%s", kind),
	})

	return nil
}
