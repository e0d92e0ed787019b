// Package errors provides structured, coded error handling for the
// contract governance domain.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Caller identity errors
	CodeCallerRequired Code = "CALLER_REQUIRED"

	// Contract initialization errors
	CodeContractNoParties      Code = "CONTRACT_NO_PARTIES"
	CodeContractInvalidRule    Code = "CONTRACT_INVALID_RULE"
	CodeContractInvalidShare   Code = "CONTRACT_INVALID_SHARE"
	CodeContractDuplicateParty Code = "CONTRACT_DUPLICATE_PARTY"

	// Voting session errors
	CodeSessionAlreadyOpen   Code = "SESSION_ALREADY_OPEN"
	CodeSessionNotOpen       Code = "SESSION_NOT_OPEN"
	CodeSessionNotFound      Code = "SESSION_NOT_FOUND"
	CodeSessionAlreadyClosed Code = "SESSION_ALREADY_CLOSED"
	CodeSessionStillOpen     Code = "SESSION_STILL_OPEN"
	CodeSessionNotDecided    Code = "SESSION_NOT_DECIDED"

	// Vote errors
	CodePartyNotEligible Code = "PARTY_NOT_ELIGIBLE"
	CodeAlreadyVoted     Code = "ALREADY_VOTED"
	CodeHasNotVoted      Code = "HAS_NOT_VOTED"

	// Cession errors
	CodeVotingInProgress        Code = "VOTING_IN_PROGRESS"
	CodeDuplicatePendingRequest Code = "DUPLICATE_PENDING_REQUEST"
	CodeSelfCession             Code = "SELF_CESSION"
	CodeRequestNotFound         Code = "REQUEST_NOT_FOUND"
	CodeRequestAlreadyResolved  Code = "REQUEST_ALREADY_RESOLVED"
	CodeNotAuthorized           Code = "NOT_AUTHORIZED"

	// Party registry errors
	CodePartyNotFound     Code = "PARTY_NOT_FOUND"
	CodeNotRightHolder    Code = "NOT_RIGHT_HOLDER"
	CodeSameParty         Code = "SAME_PARTY"
	CodeInsufficientShare Code = "INSUFFICIENT_SHARE"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - input fails a domain invariant
	case CodeContractNoParties,
		CodeContractInvalidRule,
		CodeContractInvalidShare,
		CodeContractDuplicateParty,
		CodeSelfCession,
		CodeDuplicatePendingRequest,
		CodeSameParty,
		CodeInsufficientShare,
		CodeInvalidAmount:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSessionAlreadyOpen,
		CodeSessionNotOpen,
		CodeSessionAlreadyClosed,
		CodeSessionStillOpen,
		CodeSessionNotDecided,
		CodeAlreadyVoted,
		CodeHasNotVoted,
		CodeVotingInProgress,
		CodeRequestAlreadyResolved:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks standing for the mutation
	case CodePartyNotEligible,
		CodeNotAuthorized,
		CodeNotRightHolder:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeSessionNotFound,
		CodeRequestNotFound,
		CodePartyNotFound:
		return codes.NotFound

	case CodeCallerRequired:
		return codes.Unauthenticated

	default:
		return codes.Internal
	}
}
