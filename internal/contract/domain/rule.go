package domain

// DecisionRule determines when a voting session's outcome is settled.
// The rule is fixed at contract initialization.
type DecisionRule int

const (
	// RuleUnspecified represents an invalid decision rule value.
	RuleUnspecified DecisionRule = iota
	// RuleMajority settles once either side strictly exceeds half of the
	// eligible parties.
	RuleMajority
	// RuleUnanimity passes only if every eligible party votes in favor and
	// rejects on the first vote against.
	RuleUnanimity
)

// String returns the rule name for logs and persistence.
func (r DecisionRule) String() string {
	switch r {
	case RuleMajority:
		return "majority"
	case RuleUnanimity:
		return "unanimity"
	default:
		return "unspecified"
	}
}

// ParseDecisionRule maps a persisted rule name back to its value.
func ParseDecisionRule(value string) DecisionRule {
	switch value {
	case "majority":
		return RuleMajority
	case "unanimity":
		return RuleUnanimity
	default:
		return RuleUnspecified
	}
}

// Outcome is the evaluator's read of a session tally.
type Outcome int

const (
	// OutcomeUndecided means the tally does not settle the session yet.
	OutcomeUndecided Outcome = iota
	// OutcomeInFavor means the session passed.
	OutcomeInFavor
	// OutcomeRejected means the session failed.
	OutcomeRejected
)

// String returns the outcome name for logs and persistence.
func (o Outcome) String() string {
	switch o {
	case OutcomeInFavor:
		return "inFavor"
	case OutcomeRejected:
		return "rejected"
	default:
		return "undecided"
	}
}

// Decide evaluates a tally against the decision rule. It is a pure function
// of the counts: votesInFavor and votesAgainst are the current tally and
// eligible is the number of right-holding parties.
//
// Majority settles in favor once votesInFavor strictly exceeds half the
// eligible parties, and against once votesAgainst does; an even split stays
// undecided until all votes are in. Unanimity rejects on the first vote
// against and passes only with every eligible party in favor.
func Decide(rule DecisionRule, votesInFavor, votesAgainst, eligible int) Outcome {
	if eligible <= 0 {
		return OutcomeUndecided
	}

	switch rule {
	case RuleMajority:
		if votesInFavor > eligible/2 {
			return OutcomeInFavor
		}
		if votesAgainst > eligible/2 {
			return OutcomeRejected
		}
		return OutcomeUndecided
	case RuleUnanimity:
		if votesAgainst > 0 {
			return OutcomeRejected
		}
		if votesInFavor == eligible {
			return OutcomeInFavor
		}
		return OutcomeUndecided
	default:
		return OutcomeUndecided
	}
}
