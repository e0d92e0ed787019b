package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/covenant.space/internal/errors"
	"github.com/louisbranch/covenant.space/internal/id"
)

// Contract is the aggregate root. It exclusively owns its party registry,
// its session sequence, and its two cession request sequences.
type Contract struct {
	ID     string
	Title  []byte
	Detail []byte
	Rule   DecisionRule

	Parties       []Party
	Sessions      []VotingSession
	RightRequests []CessionRequest
	ShareRequests []CessionRequest

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FoundingParty describes one member of the founding list.
type FoundingParty struct {
	ID    string
	Share int64
}

// CreateContractInput describes the data needed to initialize a contract.
type CreateContractInput struct {
	ID      string
	Title   []byte
	Detail  []byte
	Rule    DecisionRule
	Parties []FoundingParty
}

// CreateContract initializes a contract from an explicit founding list.
// Every founding party starts as a right holder. When no ID is supplied one
// is generated.
func CreateContract(input CreateContractInput, now func() time.Time, idGenerator func() (string, error)) (Contract, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.Rule != RuleMajority && input.Rule != RuleUnanimity {
		return Contract{}, apperrors.New(apperrors.CodeContractInvalidRule, "decision rule is required")
	}
	if len(input.Parties) == 0 {
		return Contract{}, apperrors.New(apperrors.CodeContractNoParties, "founding party list is required")
	}

	seen := make(map[string]struct{}, len(input.Parties))
	parties := make([]Party, 0, len(input.Parties))
	for _, founder := range input.Parties {
		founderID := strings.TrimSpace(founder.ID)
		if founderID == "" {
			return Contract{}, apperrors.New(apperrors.CodeContractNoParties, "founding party id is required")
		}
		if _, dup := seen[founderID]; dup {
			return Contract{}, apperrors.Newf(apperrors.CodeContractDuplicateParty, "party %s listed twice", founderID)
		}
		if founder.Share < 0 {
			return Contract{}, apperrors.Newf(apperrors.CodeContractInvalidShare, "party %s share must be non-negative, got %d", founderID, founder.Share)
		}
		seen[founderID] = struct{}{}
		parties = append(parties, Party{ID: founderID, Share: founder.Share, HasRight: true})
	}

	contractID := strings.TrimSpace(input.ID)
	if contractID == "" {
		generated, err := idGenerator()
		if err != nil {
			return Contract{}, fmt.Errorf("generate contract id: %w", err)
		}
		contractID = generated
	}

	createdAt := now().UTC()
	return Contract{
		ID:        contractID,
		Title:     input.Title,
		Detail:    input.Detail,
		Rule:      input.Rule,
		Parties:   parties,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// VotingInProgress reports whether the most recent session is still open.
// At most one session is open at a time, so checking the tail suffices.
func (c *Contract) VotingInProgress() bool {
	if len(c.Sessions) == 0 {
		return false
	}
	return c.Sessions[len(c.Sessions)-1].InProgress
}
