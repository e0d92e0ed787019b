// Package domain models a multi-party ownership agreement: the party
// registry with shares and voting rights, voting-session lifecycle under a
// fixed decision rule, and the two-phase cession protocols that move rights
// and shares between parties.
//
// The Contract aggregate owns all mutable state. Sessions and cession
// requests are append-only audit history: once appended they are never
// removed, and once finalized their fields are frozen. Total share across
// all parties is conserved by every operation except initialization.
package domain
