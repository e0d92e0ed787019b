package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
	"github.com/louisbranch/covenant.space/internal/storage"
)

func testClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func testIDs(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", fmt.Errorf("test id sequence exhausted")
		}
		value := ids[index]
		index++
		return value, nil
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "contracts.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func newTestContract(t *testing.T) domain.Contract {
	t.Helper()
	contract, err := domain.CreateContract(domain.CreateContractInput{
		ID:     "contract-1",
		Title:  []byte("venture charter"),
		Detail: []byte("three founders, majority rule"),
		Rule:   domain.RuleMajority,
		Parties: []domain.FoundingParty{
			{ID: "alice", Share: 4},
			{ID: "bob", Share: 3},
			{ID: "carol", Share: 1},
		},
	}, testClock, nil)
	if err != nil {
		t.Fatalf("CreateContract() error = %v", err)
	}
	return contract
}

func TestPutGetContractRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	contract := newTestContract(t)
	if _, err := contract.OpenVotingSession("alice", 7, testClock); err != nil {
		t.Fatalf("OpenVotingSession() error = %v", err)
	}
	if err := contract.CastVote(0, "alice", true, testClock); err != nil {
		t.Fatalf("CastVote(alice) error = %v", err)
	}
	if err := contract.CastVote(0, "bob", true, testClock); err != nil {
		t.Fatalf("CastVote(bob) error = %v", err)
	}
	if contract.VotingInProgress() {
		t.Fatal("expected majority tally to close the session before persisting")
	}
	if _, err := contract.RequestShareCession("carol", "alice", 2, testClock, testIDs("req-1")); err != nil {
		t.Fatalf("RequestShareCession() error = %v", err)
	}

	if err := store.PutContract(ctx, contract); err != nil {
		t.Fatalf("PutContract() error = %v", err)
	}

	loaded, err := store.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, contract) {
		t.Fatalf("GetContract() = %+v, want %+v", loaded, contract)
	}
}

func TestPutContractOverwritesMutations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	contract := newTestContract(t)
	if _, err := contract.RequestShareCession("bob", "alice", 2, testClock, testIDs("req-1")); err != nil {
		t.Fatalf("RequestShareCession() error = %v", err)
	}
	if err := store.PutContract(ctx, contract); err != nil {
		t.Fatalf("PutContract() error = %v", err)
	}

	if err := contract.AcceptShareCession("req-1", "alice", testClock); err != nil {
		t.Fatalf("AcceptShareCession() error = %v", err)
	}
	if err := store.PutContract(ctx, contract); err != nil {
		t.Fatalf("PutContract() after mutation error = %v", err)
	}

	loaded, err := store.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract() error = %v", err)
	}
	if !loaded.ShareRequests[0].Resolved {
		t.Fatal("expected reloaded request to be resolved")
	}
	alice, err := loaded.Party("alice")
	if err != nil {
		t.Fatalf("Party(alice) error = %v", err)
	}
	if alice.Share != 2 {
		t.Fatalf("alice share = %d, want 2", alice.Share)
	}
	bob, err := loaded.Party("bob")
	if err != nil {
		t.Fatalf("Party(bob) error = %v", err)
	}
	if bob.Share != 5 {
		t.Fatalf("bob share = %d, want 5", bob.Share)
	}
	if total := loaded.TotalShare(); total != 8 {
		t.Fatalf("TotalShare() = %d, want 8", total)
	}
}

func TestGetContractMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetContract(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetContract(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestPutContractRequiresID(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutContract(context.Background(), domain.Contract{}); err == nil {
		t.Fatal("expected error for contract without id")
	}
}

func TestAppendAndListEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := event.Event{
		ContractID: "contract-1",
		Type:       event.TypeContractInitialized,
		Timestamp:  testClock(),
	}
	second := event.Event{
		ContractID:    "contract-1",
		Type:          event.TypeSessionOpened,
		PartyID:       "alice",
		SessionNumber: 0,
		Detail:        "hint=7",
		Timestamp:     testClock().Add(time.Minute),
	}
	other := event.Event{
		ContractID: "contract-2",
		Type:       event.TypeContractInitialized,
		Timestamp:  testClock(),
	}
	for _, evt := range []event.Event{first, second, other} {
		if err := store.AppendEvent(ctx, evt); err != nil {
			t.Fatalf("AppendEvent(%s) error = %v", evt.Type, err)
		}
	}

	events, err := store.ListEvents(ctx, "contract-1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents() returned %d events, want 2", len(events))
	}
	if !reflect.DeepEqual(events[0], first) {
		t.Fatalf("events[0] = %+v, want %+v", events[0], first)
	}
	if !reflect.DeepEqual(events[1], second) {
		t.Fatalf("events[1] = %+v, want %+v", events[1], second)
	}
}

func TestAppendEventValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendEvent(ctx, event.Event{Type: event.TypeVoteCast}); err == nil {
		t.Fatal("expected error for event without contract id")
	}
	if err := store.AppendEvent(ctx, event.Event{ContractID: "contract-1"}); err == nil {
		t.Fatal("expected error for event without type")
	}
}
