package domain

import (
	"time"

	apperrors "github.com/louisbranch/covenant.space/internal/errors"
)

// VotingSession is one round of voting. Sessions are append-only: the
// session number is its index in the contract's sequence, and once closed
// the vote map, tally, and close date are frozen.
type VotingSession struct {
	Number       int
	Hint         int
	Votes        map[string]bool
	VotesDone    int
	VotesInFavor int
	OpenedBy     string
	OpenedAt     time.Time
	CloseDate    time.Time
	InProgress   bool
	Result       Outcome
}

// VotesAgainst returns the number of recorded votes against.
func (s *VotingSession) VotesAgainst() int {
	return s.VotesDone - s.VotesInFavor
}

// SessionData is the read-model view of a session.
type SessionData struct {
	VotesDone    int
	VotesInFavor int
	CloseDate    time.Time
	InProgress   bool
}

// OpenVotingSession opens a new session and returns its number. Only one
// session may be open at a time, and only a right holder may open one. The
// hint is an opaque caller-supplied tag recorded on the session.
func (c *Contract) OpenVotingSession(initiatorID string, hint int, now func() time.Time) (int, error) {
	if now == nil {
		now = time.Now
	}
	initiator := c.party(initiatorID)
	if initiator == nil || !initiator.HasRight {
		return 0, apperrors.Newf(apperrors.CodePartyNotEligible, "party %s does not hold a voting right", initiatorID)
	}
	if c.VotingInProgress() {
		return 0, apperrors.New(apperrors.CodeSessionAlreadyOpen, "voting session in progress")
	}

	number := len(c.Sessions)
	c.Sessions = append(c.Sessions, VotingSession{
		Number:     number,
		Hint:       hint,
		Votes:      make(map[string]bool),
		OpenedBy:   initiatorID,
		OpenedAt:   now().UTC(),
		InProgress: true,
	})
	return number, nil
}

// CastVote records a party's first vote in a session. A second cast from
// the same party is rejected; changing a recorded vote goes through
// ReviseVote. The decision rule is re-evaluated after the vote and the
// session auto-closes the instant an outcome is settled.
func (c *Contract) CastVote(sessionNumber int, partyID string, inFavor bool, now func() time.Time) error {
	session, err := c.session(sessionNumber)
	if err != nil {
		return err
	}
	if !session.InProgress {
		return apperrors.New(apperrors.CodeSessionNotOpen, "session is not active")
	}
	if err := c.checkEligible(partyID); err != nil {
		return err
	}
	if _, voted := session.Votes[partyID]; voted {
		return apperrors.New(apperrors.CodeAlreadyVoted, "party has voted")
	}

	session.Votes[partyID] = inFavor
	session.VotesDone++
	if inFavor {
		session.VotesInFavor++
	}

	c.settle(session, now)
	return nil
}

// ReviseVote updates a previously cast vote. The cast count is unchanged;
// the in-favor tally shifts by at most one. Closing is always driven by the
// evaluator's current read, so a revision can settle a session either way.
func (c *Contract) ReviseVote(sessionNumber int, partyID string, inFavor bool, now func() time.Time) error {
	session, err := c.session(sessionNumber)
	if err != nil {
		return err
	}
	if !session.InProgress {
		return apperrors.New(apperrors.CodeSessionNotOpen, "session is not active")
	}
	if err := c.checkEligible(partyID); err != nil {
		return err
	}
	previous, voted := session.Votes[partyID]
	if !voted {
		return apperrors.New(apperrors.CodeHasNotVoted, "party has not voted")
	}

	if previous != inFavor {
		session.Votes[partyID] = inFavor
		if inFavor {
			session.VotesInFavor++
		} else {
			session.VotesInFavor--
		}
	}

	c.settle(session, now)
	return nil
}

// TryCloseVoting closes a session explicitly. It succeeds when the decision
// rule currently reports an outcome, or when every eligible party has voted
// — the forced close resolves an undecided tally as rejected.
func (c *Contract) TryCloseVoting(sessionNumber int, now func() time.Time) error {
	session, err := c.session(sessionNumber)
	if err != nil {
		return err
	}
	if !session.InProgress {
		return apperrors.New(apperrors.CodeSessionAlreadyClosed, "session is already closed")
	}

	eligible := c.EligiblePartyCount()
	outcome := Decide(c.Rule, session.VotesInFavor, session.VotesAgainst(), eligible)
	if outcome == OutcomeUndecided {
		if session.VotesDone < eligible {
			return apperrors.New(apperrors.CodeSessionNotDecided, "session outcome is not decided")
		}
		outcome = OutcomeRejected
	}

	c.close(session, outcome, now)
	return nil
}

// SessionData returns the read-model view of a session.
func (c *Contract) SessionData(sessionNumber int) (SessionData, error) {
	session, err := c.session(sessionNumber)
	if err != nil {
		return SessionData{}, err
	}
	return SessionData{
		VotesDone:    session.VotesDone,
		VotesInFavor: session.VotesInFavor,
		CloseDate:    session.CloseDate,
		InProgress:   session.InProgress,
	}, nil
}

// SessionResult returns the frozen outcome of a closed session.
func (c *Contract) SessionResult(sessionNumber int) (Outcome, error) {
	session, err := c.session(sessionNumber)
	if err != nil {
		return OutcomeUndecided, err
	}
	if session.InProgress {
		return OutcomeUndecided, apperrors.New(apperrors.CodeSessionStillOpen, "session is still open")
	}
	return session.Result, nil
}

// session returns a mutable pointer to the numbered session.
func (c *Contract) session(sessionNumber int) (*VotingSession, error) {
	if sessionNumber < 0 || sessionNumber >= len(c.Sessions) {
		return nil, apperrors.Newf(apperrors.CodeSessionNotFound, "session %d not found", sessionNumber)
	}
	return &c.Sessions[sessionNumber], nil
}

// checkEligible rejects voters that are unknown or have ceded their right.
func (c *Contract) checkEligible(partyID string) error {
	party := c.party(partyID)
	if party == nil || !party.HasRight {
		return apperrors.Newf(apperrors.CodePartyNotEligible, "party %s does not hold a voting right", partyID)
	}
	return nil
}

// settle re-runs the evaluator and closes the session the moment it
// reports an outcome.
func (c *Contract) settle(session *VotingSession, now func() time.Time) {
	outcome := Decide(c.Rule, session.VotesInFavor, session.VotesAgainst(), c.EligiblePartyCount())
	if outcome == OutcomeUndecided {
		return
	}
	c.close(session, outcome, now)
}

// close freezes the session. The close date is set exactly once.
func (c *Contract) close(session *VotingSession, outcome Outcome, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	session.CloseDate = now().UTC()
	session.InProgress = false
	session.Result = outcome
}
