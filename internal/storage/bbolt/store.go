// Package bbolt provides a BoltDB-backed contract storage implementation.
// Each contract aggregate is stored as one JSON record, and audit events are
// keyed by contract with a monotonic sequence suffix.
package bbolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/event"
	"github.com/louisbranch/covenant.space/internal/storage"
)

const (
	contractBucket = "contract"
	eventBucket    = "contract_event"
)

// Store provides a BoltDB-backed contract store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutContract persists a contract aggregate record.
func (s *Store) PutContract(ctx context.Context, contract domain.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(contract.ID) == "" {
		return fmt.Errorf("contract id is required")
	}

	payload, err := json.Marshal(contract)
	if err != nil {
		return fmt.Errorf("marshal contract: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(contractBucket))
		if bucket == nil {
			return fmt.Errorf("contract bucket is missing")
		}
		return bucket.Put(contractKey(contract.ID), payload)
	})
}

// GetContract fetches a contract aggregate record by ID.
func (s *Store) GetContract(ctx context.Context, id string) (domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contract{}, err
	}
	if s == nil || s.db == nil {
		return domain.Contract{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.Contract{}, fmt.Errorf("contract id is required")
	}

	var contract domain.Contract
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(contractBucket))
		if bucket == nil {
			return fmt.Errorf("contract bucket is missing")
		}
		payload := bucket.Get(contractKey(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &contract); err != nil {
			return fmt.Errorf("unmarshal contract: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}

	return contract, nil
}

// AppendEvent records one audit-log entry for a contract.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.ContractID) == "" {
		return fmt.Errorf("event contract id is required")
	}
	if evt.Type == "" {
		return fmt.Errorf("event type is required")
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("event sequence: %w", err)
		}
		return bucket.Put(eventKey(evt.ContractID, seq), payload)
	})
}

// ListEvents returns a contract's audit log in append order.
func (s *Store) ListEvents(ctx context.Context, contractID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return nil, fmt.Errorf("contract id is required")
	}

	var events []event.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		prefix := []byte(contractID + "/")
		cursor := bucket.Cursor()
		for key, payload := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, payload = cursor.Next() {
			var evt event.Event
			if err := json.Unmarshal(payload, &evt); err != nil {
				return fmt.Errorf("unmarshal event %s: %w", key, err)
			}
			events = append(events, evt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(contractBucket)); err != nil {
			return fmt.Errorf("create contract bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(eventBucket)); err != nil {
			return fmt.Errorf("create event bucket: %w", err)
		}
		return nil
	})
}

func contractKey(id string) []byte {
	return []byte(id)
}

// eventKey fixes the sequence width so lexicographic key order matches
// append order within a contract prefix.
func eventKey(contractID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/%020d", contractID, seq))
}

var (
	_ storage.ContractStore = (*Store)(nil)
	_ storage.EventStore    = (*Store)(nil)
)
