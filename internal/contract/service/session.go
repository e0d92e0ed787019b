package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
)

// OpenVotingSession opens a new voting session on behalf of the calling
// party and returns its number.
func (s *ContractService) OpenVotingSession(ctx context.Context, contractID string, hint int) (int, error) {
	partyID, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}

	lock := s.contractLock(contractID)
	lock.Lock()
	defer lock.Unlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return 0, err
	}

	number, err := contract.OpenVotingSession(partyID, hint, s.clock)
	if err != nil {
		return 0, err
	}
	if err := s.save(ctx, &contract); err != nil {
		return 0, err
	}

	s.emit(ctx, event.Event{
		ContractID:    contract.ID,
		Type:          event.TypeSessionOpened,
		PartyID:       partyID,
		SessionNumber: number,
		Detail:        fmt.Sprintf("hint=%d", hint),
	})

	return number, nil
}

// CastVote records the calling party's first vote in a session. When the
// tally settles the session, the close is recorded as well.
func (s *ContractService) CastVote(ctx context.Context, contractID string, sessionNumber int, inFavor bool) error {
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

	if err := contract.CastVote(sessionNumber, partyID, inFavor, s.clock); err != nil {
		return err
	}
	if err := s.save(ctx, &contract); err != nil {
		return err
	}

	s.emit(ctx, event.Event{
		ContractID:    contract.ID,
		Type:          event.TypeVoteCast,
		PartyID:       partyID,
		SessionNumber: sessionNumber,
		Detail:        fmt.Sprintf("in_favor=%t", inFavor),
	})
	s.emitIfClosed(ctx, &contract, sessionNumber)

	return nil
}

// ReviseVote changes the calling party's recorded vote in a session.
func (s *ContractService) ReviseVote(ctx context.Context, contractID string, sessionNumber int, inFavor bool) error {
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

	if err := contract.ReviseVote(sessionNumber, partyID, inFavor, s.clock); err != nil {
		return err
	}
	if err := s.save(ctx, &contract); err != nil {
		return err
	}

	s.emit(ctx, event.Event{
		ContractID:    contract.ID,
		Type:          event.TypeVoteRevised,
		PartyID:       partyID,
		SessionNumber: sessionNumber,
		Detail:        fmt.Sprintf("in_favor=%t", inFavor),
	})
	s.emitIfClosed(ctx, &contract, sessionNumber)

	return nil
}

// TryCloseVoting forces a session closed once every eligible party has
// voted, resolving a still-undecided full turnout as rejected.
func (s *ContractService) TryCloseVoting(ctx context.Context, contractID string, sessionNumber int) error {
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

	wasOpen := contract.VotingInProgress()
	if err := contract.TryCloseVoting(sessionNumber, s.clock); err != nil {
		return err
	}
	if err := s.save(ctx, &contract); err != nil {
		return err
	}

	if wasOpen {
		s.emit(ctx, event.Event{
			ContractID:    contract.ID,
			Type:          event.TypeSessionClosed,
			PartyID:       partyID,
			SessionNumber: sessionNumber,
			Detail:        fmt.Sprintf("result=%s forced=true", contract.Sessions[sessionNumber].Result),
		})
	}

	return nil
}

// GetSessionData returns the tally view of a session.
func (s *ContractService) GetSessionData(ctx context.Context, contractID string, sessionNumber int) (domain.SessionData, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return domain.SessionData{}, err
	}
	return contract.SessionData(sessionNumber)
}

// GetSessionResult returns the outcome of a closed session.
func (s *ContractService) GetSessionResult(ctx context.Context, contractID string, sessionNumber int) (domain.Outcome, error) {
	lock := s.contractLock(contractID)
	lock.RLock()
	defer lock.RUnlock()

	contract, err := s.load(ctx, contractID)
	if err != nil {
		return domain.OutcomeUndecided, err
	}
	return contract.SessionResult(sessionNumber)
}

// emitIfClosed records a session close caused by a vote settling the tally.
func (s *ContractService) emitIfClosed(ctx context.Context, contract *domain.Contract, sessionNumber int) {
	if sessionNumber < 0 || sessionNumber >= len(contract.Sessions) {
		return
	}
	session := contract.Sessions[sessionNumber]
	if session.InProgress {
		return
	}
	s.emit(ctx, event.Event{
		ContractID:    contract.ID,
		Type:          event.TypeSessionClosed,
		SessionNumber: sessionNumber,
		Detail:        fmt.Sprintf("result=%s", session.Result),
		Timestamp:     session.CloseDate,
	})
}
