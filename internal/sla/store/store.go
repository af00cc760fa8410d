package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

// Store reads the SLA inputs from the workflow tables. Timestamps are handed
// to the aggregator as RFC 3339 strings, the same shape the legacy reader yields.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *Store) TransitionLog(ctx context.Context, contractID string) ([]sla.Transition, error) {
	id, err := uuid.Parse(contractID)
	if err != nil {
		return nil, fmt.Errorf("parsing contract id %q: %w", contractID, err)
	}

	query := `
		SELECT from_stage, to_stage, changed_at, changed_by
		FROM status_log
		WHERE contract_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying status log: %w", err)
	}
	defer rows.Close()

	var log []sla.Transition

	for rows.Next() {
		var (
			from, by sql.NullString
			to       string
			at       time.Time
		)

		if err := rows.Scan(&from, &to, &at, &by); err != nil {
			return nil, fmt.Errorf("scanning status log row: %w", err)
		}

		tr := sla.Transition{To: to, At: formatTimestamp(at)}
		if from.Valid {
			tr.From = &from.String
		}

		if by.Valid {
			tr.Actor = &by.String
		}

		log = append(log, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status log: %w", err)
	}

	return log, nil
}

func (s *Store) FinalizedContracts(ctx context.Context) ([]sla.FinalizedContract, error) {
	query := `
		SELECT id, created_at, finalized_at
		FROM contracts
		WHERE stage = 'FINALIZADO'
			AND deleted_at IS NULL
			AND finalized_at IS NOT NULL
		ORDER BY finalized_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying finalized contracts: %w", err)
	}
	defer rows.Close()

	var out []sla.FinalizedContract

	for rows.Next() {
		var (
			id                   uuid.UUID
			created, finalizedAt time.Time
		)

		if err := rows.Scan(&id, &created, &finalizedAt); err != nil {
			return nil, fmt.Errorf("scanning finalized contract: %w", err)
		}

		out = append(out, sla.FinalizedContract{
			ContractID:  id.String(),
			CreatedAt:   formatTimestamp(created),
			FinalizedAt: formatTimestamp(finalizedAt),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating finalized contracts: %w", err)
	}

	return out, nil
}
