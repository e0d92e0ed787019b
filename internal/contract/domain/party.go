package domain

import (
	apperrors "github.com/louisbranch/covenant.space/internal/errors"
)

// Party is one member of the contract. A party is never deleted; when both
// its share and right reach zero it is simply inert.
type Party struct {
	ID       string
	Share    int64
	HasRight bool
}

// Party returns a copy of the party with the given identifier.
func (c *Contract) Party(partyID string) (Party, error) {
	p := c.party(partyID)
	if p == nil {
		return Party{}, apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", partyID)
	}
	return *p, nil
}

// PartyCount returns the number of parties holding a non-zero share.
func (c *Contract) PartyCount() int {
	count := 0
	for i := range c.Parties {
		if c.Parties[i].Share > 0 {
			count++
		}
	}
	return count
}

// EligiblePartyCount returns the number of right-holding parties. Only
// right holders count toward the decision-rule denominator.
func (c *Contract) EligiblePartyCount() int {
	count := 0
	for i := range c.Parties {
		if c.Parties[i].HasRight {
			count++
		}
	}
	return count
}

// TotalShare returns the sum of all party shares. The total is invariant
// across every operation except initialization.
func (c *Contract) TotalShare() int64 {
	var total int64
	for i := range c.Parties {
		total += c.Parties[i].Share
	}
	return total
}

// TransferRight moves the voting right from one party to another. The
// receiving party keeps its share; the ceding party becomes unable to vote.
// Callers are responsible for sequencing against open sessions.
func (c *Contract) TransferRight(fromID, toID string) error {
	if fromID == toID {
		return apperrors.New(apperrors.CodeSameParty, "cannot transfer right to the same party")
	}
	from := c.party(fromID)
	if from == nil {
		return apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", fromID)
	}
	if !from.HasRight {
		return apperrors.Newf(apperrors.CodeNotRightHolder, "party %s does not hold a right", fromID)
	}
	to := c.party(toID)
	if to == nil {
		return apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", toID)
	}

	from.HasRight = false
	to.HasRight = true
	return nil
}

// TransferShare moves amount of share from one party to another. The total
// share across all parties is conserved.
func (c *Contract) TransferShare(fromID, toID string, amount int64) error {
	if amount <= 0 {
		return apperrors.Newf(apperrors.CodeInvalidAmount, "share amount must be positive, got %d", amount)
	}
	if fromID == toID {
		return apperrors.New(apperrors.CodeSameParty, "cannot transfer share to the same party")
	}
	from := c.party(fromID)
	if from == nil {
		return apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", fromID)
	}
	to := c.party(toID)
	if to == nil {
		return apperrors.Newf(apperrors.CodePartyNotFound, "party %s not found", toID)
	}
	if from.Share < amount {
		return apperrors.Newf(apperrors.CodeInsufficientShare, "party %s holds %d of %d requested", fromID, from.Share, amount)
	}

	from.Share -= amount
	to.Share += amount
	return nil
}

// party returns a mutable pointer into the registry, or nil.
func (c *Contract) party(partyID string) *Party {
	for i := range c.Parties {
		if c.Parties[i].ID == partyID {
			return &c.Parties[i]
		}
	}
	return nil
}

// ensureParty returns the party with the given identifier, appending an
// inert record when the identifier is new. Cession acceptance is the only
// path by which membership grows after initialization.
func (c *Contract) ensureParty(partyID string) *Party {
	if p := c.party(partyID); p != nil {
		return p
	}
	c.Parties = append(c.Parties, Party{ID: partyID})
	return &c.Parties[len(c.Parties)-1]
}
