// Package legacy reads SLA inputs from the historical SQLite database (banco.db),
// where timestamps are stored as ISO-8601 TEXT exactly as they were written.
package legacy

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

type Reader struct {
	db *sql.DB

	// hasDeletion is false for databases created before soft deletion existed.
	hasDeletion bool
}

// Open opens the database read-only.
func Open(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}

	r, err := New(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

func New(ctx context.Context, db *sql.DB) (*Reader, error) {
	hasDeletion, err := hasColumn(ctx, db, "contratos", "excluido_em")
	if err != nil {
		return nil, err
	}

	return &Reader{db: db, hasDeletion: hasDeletion}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scanning column name: %w", err)
		}

		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}

func (r *Reader) TransitionLog(ctx context.Context, contractID string) ([]sla.Transition, error) {
	query := `
		SELECT de_status, para_status, alterado_em, alterado_por
		FROM status_log
		WHERE contrato_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("querying status log: %w", err)
	}
	defer rows.Close()

	var log []sla.Transition

	for rows.Next() {
		var from, to, at, by sql.NullString
		if err := rows.Scan(&from, &to, &at, &by); err != nil {
			return nil, fmt.Errorf("scanning status log row: %w", err)
		}

		// NULL destination or timestamp stays empty; the aggregator drops such events.
		tr := sla.Transition{To: to.String, At: at.String}
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

func (r *Reader) FinalizedContracts(ctx context.Context) ([]sla.FinalizedContract, error) {
	query := `
		SELECT id, criado_em, finalizado_em
		FROM contratos
		WHERE status = 'FINALIZADO'
			AND criado_em IS NOT NULL AND criado_em <> ''
			AND finalizado_em IS NOT NULL AND finalizado_em <> ''`

	if r.hasDeletion {
		query += ` AND excluido_em IS NULL`
	}

	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying finalized contracts: %w", err)
	}
	defer rows.Close()

	var out []sla.FinalizedContract

	for rows.Next() {
		var fc sla.FinalizedContract
		if err := rows.Scan(&fc.ContractID, &fc.CreatedAt, &fc.FinalizedAt); err != nil {
			return nil, fmt.Errorf("scanning finalized contract: %w", err)
		}

		out = append(out, fc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating finalized contracts: %w", err)
	}

	return out, nil
}
