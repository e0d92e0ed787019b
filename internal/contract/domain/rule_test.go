package domain

import "testing"

func TestDecideMajority(t *testing.T) {
	tests := []struct {
		name     string
		inFavor  int
		against  int
		eligible int
		want     Outcome
	}{
		{"no votes", 0, 0, 3, OutcomeUndecided},
		{"one of three in favor", 1, 0, 3, OutcomeUndecided},
		{"two of three in favor", 2, 0, 3, OutcomeInFavor},
		{"two of three against", 0, 2, 3, OutcomeRejected},
		{"split one one of three", 1, 1, 3, OutcomeUndecided},
		{"even split of four", 2, 2, 4, OutcomeUndecided},
		{"three of four in favor", 3, 1, 4, OutcomeInFavor},
		{"three of four against", 1, 3, 4, OutcomeRejected},
		{"half of four in favor is not enough", 2, 0, 4, OutcomeUndecided},
		{"sole party in favor", 1, 0, 1, OutcomeInFavor},
		{"sole party against", 0, 1, 1, OutcomeRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(RuleMajority, tc.inFavor, tc.against, tc.eligible)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDecideUnanimity(t *testing.T) {
	tests := []struct {
		name     string
		inFavor  int
		against  int
		eligible int
		want     Outcome
	}{
		{"no votes", 0, 0, 3, OutcomeUndecided},
		{"partial favor", 2, 0, 3, OutcomeUndecided},
		{"all in favor", 3, 0, 3, OutcomeInFavor},
		{"single vote against rejects", 0, 1, 3, OutcomeRejected},
		{"against rejects despite favor majority", 2, 1, 3, OutcomeRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(RuleUnanimity, tc.inFavor, tc.against, tc.eligible)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDecideEdgeCases(t *testing.T) {
	if got := Decide(RuleMajority, 1, 0, 0); got != OutcomeUndecided {
		t.Fatalf("expected undecided with zero eligible parties, got %v", got)
	}
	if got := Decide(RuleUnspecified, 3, 0, 3); got != OutcomeUndecided {
		t.Fatalf("expected undecided for unspecified rule, got %v", got)
	}
}

func TestDecisionRuleRoundTrip(t *testing.T) {
	for _, rule := range []DecisionRule{RuleMajority, RuleUnanimity} {
		if got := ParseDecisionRule(rule.String()); got != rule {
			t.Fatalf("expected %v to round-trip, got %v", rule, got)
		}
	}
	if got := ParseDecisionRule("bogus"); got != RuleUnspecified {
		t.Fatalf("expected unspecified for unknown name, got %v", got)
	}
}
