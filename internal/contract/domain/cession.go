package domain

import (
	"fmt"
	"time"

	apperrors "github.com/louisbranch/covenant.space/internal/errors"
	"github.com/louisbranch/covenant.space/internal/id"
)

// CessionKind distinguishes the two cession protocols.
type CessionKind int

const (
	// CessionUnspecified represents an invalid cession kind value.
	CessionUnspecified CessionKind = iota
	// CessionRight moves the authority to vote.
	CessionRight
	// CessionShare moves part of an ownership stake.
	CessionShare
)

// String returns the kind name for logs and persistence.
func (k CessionKind) String() string {
	switch k {
	case CessionRight:
		return "right"
	case CessionShare:
		return "share"
	default:
		return "unspecified"
	}
}

// ParseCessionKind maps a persisted kind name back to its value.
func ParseCessionKind(value string) CessionKind {
	switch value {
	case "right":
		return CessionRight
	case "share":
		return CessionShare
	default:
		return CessionUnspecified
	}
}

// CessionRequest is one pending or resolved proposal to move a right or
// share. The requester is the receiving side; the target is the current
// holder, whose explicit acceptance executes the transfer. Requests are
// append-only audit history and flip to resolved exactly once.
type CessionRequest struct {
	ID          string
	Kind        CessionKind
	RequesterID string
	TargetID    string
	Amount      int64
	CreatedAt   time.Time
	Resolved    bool
	ResolvedAt  time.Time
}

// RequestRightCession records a proposal that the target cede its voting
// right to the requester. The requester need not be an existing party.
func (c *Contract) RequestRightCession(requesterID, targetID string, now func() time.Time, idGenerator func() (string, error)) (CessionRequest, error) {
	return c.requestCession(CessionRight, requesterID, targetID, 0, now, idGenerator)
}

// RequestShareCession records a proposal that the target cede amount of its
// share to the requester.
func (c *Contract) RequestShareCession(requesterID, targetID string, amount int64, now func() time.Time, idGenerator func() (string, error)) (CessionRequest, error) {
	if amount <= 0 {
		return CessionRequest{}, apperrors.Newf(apperrors.CodeInvalidAmount, "share amount must be positive, got %d", amount)
	}
	return c.requestCession(CessionShare, requesterID, targetID, amount, now, idGenerator)
}

// AcceptRightCession executes a pending right cession. Only the target may
// accept, and never while a voting session is open: a cession must not
// change the decision-making population mid-vote.
func (c *Contract) AcceptRightCession(requestID, accepterID string, now func() time.Time) error {
	request, err := c.acceptable(c.RightRequests, requestID, accepterID)
	if err != nil {
		return err
	}

	c.ensureParty(request.RequesterID)
	if err := c.TransferRight(request.TargetID, request.RequesterID); err != nil {
		return err
	}

	c.resolve(request, now)
	return nil
}

// AcceptShareCession executes a pending share cession. The target's share
// is re-checked at acceptance time; sufficiency at request time proves
// nothing after arbitrary interleaved transfers.
func (c *Contract) AcceptShareCession(requestID, accepterID string, now func() time.Time) error {
	request, err := c.acceptable(c.ShareRequests, requestID, accepterID)
	if err != nil {
		return err
	}

	c.ensureParty(request.RequesterID)
	if err := c.TransferShare(request.TargetID, request.RequesterID, request.Amount); err != nil {
		return err
	}

	c.resolve(request, now)
	return nil
}

func (c *Contract) requestCession(kind CessionKind, requesterID, targetID string, amount int64, now func() time.Time, idGenerator func() (string, error)) (CessionRequest, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if c.VotingInProgress() {
		return CessionRequest{}, apperrors.New(apperrors.CodeVotingInProgress, "voting session in progress")
	}
	if requesterID == targetID {
		return CessionRequest{}, apperrors.New(apperrors.CodeSelfCession, "cannot request a cession from yourself")
	}
	if c.party(targetID) == nil {
		return CessionRequest{}, apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", targetID)
	}
	for _, existing := range c.requests(kind) {
		if !existing.Resolved && existing.RequesterID == requesterID && existing.TargetID == targetID {
			return CessionRequest{}, apperrors.Newf(apperrors.CodeDuplicatePendingRequest, "pending %s cession request already exists for target %s", kind, targetID)
		}
	}

	requestID, err := idGenerator()
	if err != nil {
		return CessionRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	request := CessionRequest{
		ID:          requestID,
		Kind:        kind,
		RequesterID: requesterID,
		TargetID:    targetID,
		Amount:      amount,
		CreatedAt:   now().UTC(),
	}
	switch kind {
	case CessionRight:
		c.RightRequests = append(c.RightRequests, request)
	case CessionShare:
		c.ShareRequests = append(c.ShareRequests, request)
	}
	return request, nil
}

// acceptable validates the accept-phase preconditions shared by both
// protocols and returns a mutable pointer to the pending request.
func (c *Contract) acceptable(sequence []CessionRequest, requestID, accepterID string) (*CessionRequest, error) {
	var request *CessionRequest
	for i := range sequence {
		if sequence[i].ID == requestID {
			request = &sequence[i]
			break
		}
	}
	if request == nil {
		return nil, apperrors.Newf(apperrors.CodeRequestNotFound, "cession request %s not found", requestID)
	}
	if request.Resolved {
		return nil, apperrors.New(apperrors.CodeRequestAlreadyResolved, "cession request is already resolved")
	}
	if accepterID != request.TargetID {
		return nil, apperrors.Newf(apperrors.CodeNotAuthorized, "only party %s may accept this cession", request.TargetID)
	}
	// State may have changed between request and accept.
	if c.VotingInProgress() {
		return nil, apperrors.New(apperrors.CodeVotingInProgress, "voting session in progress")
	}
	return request, nil
}

func (c *Contract) requests(kind CessionKind) []CessionRequest {
	if kind == CessionRight {
		return c.RightRequests
	}
	return c.ShareRequests
}

func (c *Contract) resolve(request *CessionRequest, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	request.Resolved = true
	request.ResolvedAt = now().UTC()
}
