package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/covenant.space/internal/contract/event"
)

// AppendEvent records one audit-log entry for a contract.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.ContractID) == "" {
		return fmt.Errorf("event contract id is required")
	}
	if evt.Type == "" {
		return fmt.Errorf("event type is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO contract_events (contract_id, type, party_id, session_number, request_id, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		evt.ContractID,
		string(evt.Type),
		evt.PartyID,
		evt.SessionNumber,
		evt.RequestID,
		evt.Detail,
		toMillis(evt.Timestamp),
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns a contract's audit log in append order.
func (s *Store) ListEvents(ctx context.Context, contractID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return nil, fmt.Errorf("contract id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT contract_id, type, party_id, session_number, request_id, detail, created_at
FROM contract_events
WHERE contract_id = ?
ORDER BY seq
`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			eventType string
			createdAt int64
		)
		if err := rows.Scan(
			&evt.ContractID,
			&eventType,
			&evt.PartyID,
			&evt.SessionNumber,
			&evt.RequestID,
			&evt.Detail,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(createdAt)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
