package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/storage"
)

// PutContract persists the whole aggregate in one transaction. Parties,
// sessions, votes, and requests are upserted: domain history only grows or
// mutates in place, it never shrinks.
func (s *Store) PutContract(ctx context.Context, contract domain.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(contract.ID) == "" {
		return fmt.Errorf("contract id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put contract: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO contracts (id, title, detail, rule, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	detail = excluded.detail,
	rule = excluded.rule,
	updated_at = excluded.updated_at
`,
		contract.ID,
		contract.Title,
		contract.Detail,
		contract.Rule.String(),
		toMillis(contract.CreatedAt),
		toMillis(contract.UpdatedAt),
	); err != nil {
		return fmt.Errorf("put contract: %w", err)
	}

	for position, party := range contract.Parties {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO contract_parties (contract_id, party_id, share, has_right, position)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(contract_id, party_id) DO UPDATE SET
	share = excluded.share,
	has_right = excluded.has_right
`,
			contract.ID,
			party.ID,
			party.Share,
			boolToInt(party.HasRight),
			position,
		); err != nil {
			return fmt.Errorf("put party %s: %w", party.ID, err)
		}
	}

	for _, session := range contract.Sessions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO contract_sessions (
	contract_id, number, hint, votes_done, votes_in_favor, opened_by, opened_at, close_date, in_progress, result
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(contract_id, number) DO UPDATE SET
	votes_done = excluded.votes_done,
	votes_in_favor = excluded.votes_in_favor,
	close_date = excluded.close_date,
	in_progress = excluded.in_progress,
	result = excluded.result
`,
			contract.ID,
			session.Number,
			session.Hint,
			session.VotesDone,
			session.VotesInFavor,
			session.OpenedBy,
			toMillis(session.OpenedAt),
			toNullMillis(session.CloseDate),
			boolToInt(session.InProgress),
			session.Result.String(),
		); err != nil {
			return fmt.Errorf("put session %d: %w", session.Number, err)
		}

		for partyID, inFavor := range session.Votes {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO contract_votes (contract_id, session_number, party_id, in_favor)
VALUES (?, ?, ?, ?)
ON CONFLICT(contract_id, session_number, party_id) DO UPDATE SET
	in_favor = excluded.in_favor
`,
				contract.ID,
				session.Number,
				partyID,
				boolToInt(inFavor),
			); err != nil {
				return fmt.Errorf("put vote %s in session %d: %w", partyID, session.Number, err)
			}
		}
	}

	if err := putCessionRequests(ctx, tx, contract.ID, contract.RightRequests); err != nil {
		return err
	}
	if err := putCessionRequests(ctx, tx, contract.ID, contract.ShareRequests); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put contract: %w", err)
	}
	return nil
}

func putCessionRequests(ctx context.Context, tx *sql.Tx, contractID string, requests []domain.CessionRequest) error {
	for position, request := range requests {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO contract_cession_requests (
	contract_id, id, kind, position, requester_id, target_id, amount, created_at, resolved, resolved_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(contract_id, id) DO UPDATE SET
	resolved = excluded.resolved,
	resolved_at = excluded.resolved_at
`,
			contractID,
			request.ID,
			request.Kind.String(),
			position,
			request.RequesterID,
			request.TargetID,
			request.Amount,
			toMillis(request.CreatedAt),
			boolToInt(request.Resolved),
			toNullMillis(request.ResolvedAt),
		); err != nil {
			return fmt.Errorf("put %s cession request %s: %w", request.Kind, request.ID, err)
		}
	}
	return nil
}

// GetContract reassembles a contract aggregate from its tables.
func (s *Store) GetContract(ctx context.Context, id string) (domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contract{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Contract{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Contract{}, fmt.Errorf("contract id is required")
	}

	var (
		contract  domain.Contract
		rule      string
		createdAt int64
		updatedAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, title, detail, rule, created_at, updated_at
FROM contracts
WHERE id = ?
`, id)
	if err := row.Scan(&contract.ID, &contract.Title, &contract.Detail, &rule, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Contract{}, storage.ErrNotFound
		}
		return domain.Contract{}, fmt.Errorf("get contract: %w", err)
	}
	contract.Rule = domain.ParseDecisionRule(rule)
	contract.CreatedAt = fromMillis(createdAt)
	contract.UpdatedAt = fromMillis(updatedAt)

	if err := s.loadParties(ctx, &contract); err != nil {
		return domain.Contract{}, err
	}
	if err := s.loadSessions(ctx, &contract); err != nil {
		return domain.Contract{}, err
	}
	if err := s.loadCessionRequests(ctx, &contract); err != nil {
		return domain.Contract{}, err
	}

	return contract, nil
}

func (s *Store) loadParties(ctx context.Context, contract *domain.Contract) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT party_id, share, has_right
FROM contract_parties
WHERE contract_id = ?
ORDER BY position
`, contract.ID)
	if err != nil {
		return fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			party    domain.Party
			hasRight int
		)
		if err := rows.Scan(&party.ID, &party.Share, &hasRight); err != nil {
			return fmt.Errorf("scan party row: %w", err)
		}
		party.HasRight = hasRight != 0
		contract.Parties = append(contract.Parties, party)
	}
	return rows.Err()
}

func (s *Store) loadSessions(ctx context.Context, contract *domain.Contract) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT number, hint, votes_done, votes_in_favor, opened_by, opened_at, close_date, in_progress, result
FROM contract_sessions
WHERE contract_id = ?
ORDER BY number
`, contract.ID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			session    domain.VotingSession
			openedAt   int64
			closeDate  sql.NullInt64
			inProgress int
			result     string
		)
		if err := rows.Scan(
			&session.Number,
			&session.Hint,
			&session.VotesDone,
			&session.VotesInFavor,
			&session.OpenedBy,
			&openedAt,
			&closeDate,
			&inProgress,
			&result,
		); err != nil {
			return fmt.Errorf("scan session row: %w", err)
		}
		session.OpenedAt = fromMillis(openedAt)
		session.CloseDate = fromNullMillis(closeDate)
		session.InProgress = inProgress != 0
		session.Result = parseOutcome(result)
		session.Votes = make(map[string]bool)
		contract.Sessions = append(contract.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return s.loadVotes(ctx, contract)
}

func (s *Store) loadVotes(ctx context.Context, contract *domain.Contract) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT session_number, party_id, in_favor
FROM contract_votes
WHERE contract_id = ?
`, contract.ID)
	if err != nil {
		return fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			number  int
			partyID string
			inFavor int
		)
		if err := rows.Scan(&number, &partyID, &inFavor); err != nil {
			return fmt.Errorf("scan vote row: %w", err)
		}
		if number < 0 || number >= len(contract.Sessions) {
			return fmt.Errorf("vote references unknown session %d", number)
		}
		contract.Sessions[number].Votes[partyID] = inFavor != 0
	}
	return rows.Err()
}

func (s *Store) loadCessionRequests(ctx context.Context, contract *domain.Contract) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, kind, requester_id, target_id, amount, created_at, resolved, resolved_at
FROM contract_cession_requests
WHERE contract_id = ?
ORDER BY kind, position
`, contract.ID)
	if err != nil {
		return fmt.Errorf("list cession requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			request    domain.CessionRequest
			kind       string
			createdAt  int64
			resolved   int
			resolvedAt sql.NullInt64
		)
		if err := rows.Scan(
			&request.ID,
			&kind,
			&request.RequesterID,
			&request.TargetID,
			&request.Amount,
			&createdAt,
			&resolved,
			&resolvedAt,
		); err != nil {
			return fmt.Errorf("scan cession request row: %w", err)
		}
		request.Kind = domain.ParseCessionKind(kind)
		request.CreatedAt = fromMillis(createdAt)
		request.Resolved = resolved != 0
		request.ResolvedAt = fromNullMillis(resolvedAt)

		switch request.Kind {
		case domain.CessionRight:
			contract.RightRequests = append(contract.RightRequests, request)
		case domain.CessionShare:
			contract.ShareRequests = append(contract.ShareRequests, request)
		default:
			return fmt.Errorf("cession request %s has unknown kind %q", request.ID, kind)
		}
	}
	return rows.Err()
}

func parseOutcome(value string) domain.Outcome {
	switch value {
	case "inFavor":
		return domain.OutcomeInFavor
	case "rejected":
		return domain.OutcomeRejected
	default:
		return domain.OutcomeUndecided
	}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
