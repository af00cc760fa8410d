package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanContract reads a contract row from the scanner.
// Expected column order: id, number, template, supplier_cnpj, supplier_name, version, stage, file_path, created_at, finalized_at, deleted_at
func scanContract(s scanner) (*contract.Contract, error) {
	var c contract.Contract

	var tmpl, stage string

	if err := s.Scan(
		&c.ID, &c.Number, &tmpl, &c.SupplierCNPJ, &c.SupplierName, &c.Version, &stage,
		&c.FilePath, &c.CreatedAt, &c.FinalizedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	c.Template = contract.Template(tmpl)
	c.Stage = contract.Stage(stage)

	return &c, nil
}

const selectContractColumns = `
	id, number, template, supplier_cnpj, supplier_name, version, stage,
	file_path, created_at, finalized_at, deleted_at
`

// supplierLockKey serializes version assignment per supplier.
func supplierLockKey(cnpj string) int64 {
	h := fnv.New64a()
	h.Write([]byte("contracts"))
	h.Write([]byte{0})
	h.Write([]byte(cnpj))

	return int64(h.Sum64())
}

func (s *Store) CreateContract(ctx context.Context, c *contract.Contract, actor string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", supplierLockKey(c.SupplierCNPJ)); err != nil {
		return fmt.Errorf("acquiring supplier lock: %w", err)
	}

	// Deleted versions still count so numbers are never reused.
	versionQuery := `SELECT COALESCE(MAX(version), 0) + 1 FROM contracts WHERE supplier_cnpj = $1`
	if err := dbTx.QueryRowContext(ctx, versionQuery, c.SupplierCNPJ).Scan(&c.Version); err != nil {
		return fmt.Errorf("computing next version: %w", err)
	}

	insertQuery := `
		INSERT INTO contracts (number, template, supplier_cnpj, supplier_name, version, stage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, insertQuery,
		c.Number,
		c.Template,
		c.SupplierCNPJ,
		c.SupplierName,
		c.Version,
		c.Stage,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating contract: %w", err)
	}

	if err := appendEvent(ctx, dbTx, c.ID, nil, c.Stage, actor); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// appendEvent records a stage change. The timestamp is the transaction's NOW(),
// so it matches created_at and finalized_at written in the same transaction.
func appendEvent(ctx context.Context, dbTx *sql.Tx, id uuid.UUID, from *contract.Stage, to contract.Stage, actor string) error {
	query := `
		INSERT INTO status_log (contract_id, from_stage, to_stage, changed_at, changed_by)
		VALUES ($1, $2, $3, NOW(), $4)
	`

	var fromArg, actorArg sql.NullString
	if from != nil {
		fromArg = sql.NullString{String: string(*from), Valid: true}
	}

	if actor != "" {
		actorArg = sql.NullString{String: actor, Valid: true}
	}

	if _, err := dbTx.ExecContext(ctx, query, id, fromArg, to, actorArg); err != nil {
		return fmt.Errorf("recording status event: %w", err)
	}

	return nil
}

func (s *Store) AttachDocument(ctx context.Context, id uuid.UUID, path string) error {
	query := `UPDATE contracts SET file_path = $1 WHERE id = $2 AND deleted_at IS NULL`

	res, err := s.db.ExecContext(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("attaching document: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) GetContract(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + `
		FROM contracts
		WHERE id = $1 AND deleted_at IS NULL`

	c, err := scanContract(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contract.ErrNotFound
		}

		return nil, fmt.Errorf("getting contract: %w", err)
	}

	return c, nil
}

func (s *Store) ListContracts(ctx context.Context, filter contract.ListFilter) ([]*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + `
		FROM contracts
		WHERE deleted_at IS NULL`

	var args []any

	if filter.Stage != nil {
		query += " AND stage = $1"

		args = append(args, *filter.Stage)
	}

	query += " ORDER BY created_at DESC"

	return s.queryContracts(ctx, query, args...)
}

func (s *Store) ListSupplierVersions(ctx context.Context, cnpj string) ([]*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + `
		FROM contracts
		WHERE supplier_cnpj = $1 AND deleted_at IS NULL
		ORDER BY version DESC`

	return s.queryContracts(ctx, query, cnpj)
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]*contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var out []*contract.Contract

	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contract rows: %w", err)
	}

	return out, nil
}

func (s *Store) CountByStage(ctx context.Context) (map[contract.Stage]int, error) {
	query := `
		SELECT stage, COUNT(*)
		FROM contracts
		WHERE deleted_at IS NULL
		GROUP BY stage
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting contracts: %w", err)
	}
	defer rows.Close()

	counts := make(map[contract.Stage]int)

	for rows.Next() {
		var (
			stage string
			n     int
		)

		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("scanning stage count: %w", err)
		}

		counts[contract.Stage(stage)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stage counts: %w", err)
	}

	return counts, nil
}

// MoveStage locks the contract row, updates its stage and appends the event in one transaction.
func (s *Store) MoveStage(ctx context.Context, id uuid.UUID, to contract.Stage, actor string) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var current string

	lockQuery := `SELECT stage FROM contracts WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := dbTx.QueryRowContext(ctx, lockQuery, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, contract.ErrNotFound
		}

		return false, fmt.Errorf("locking contract: %w", err)
	}

	from := contract.Stage(current)
	if from == to {
		return false, nil
	}

	updateQuery := `
		UPDATE contracts
		SET stage = $1,
			finalized_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		WHERE id = $3
	`
	if _, err := dbTx.ExecContext(ctx, updateQuery, to, to.Terminal(), id); err != nil {
		return false, fmt.Errorf("updating stage: %w", err)
	}

	if err := appendEvent(ctx, dbTx, id, &from, to, actor); err != nil {
		return false, err
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	return true, nil
}

func (s *Store) DeleteContract(ctx context.Context, id uuid.UUID, reason, actor string) error {
	query := `
		UPDATE contracts
		SET deleted_at = NOW(), deletion_reason = $1, deleted_by = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, reason, actor, id)
	if err != nil {
		return fmt.Errorf("deleting contract: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return contract.ErrNotFound
	}

	return nil
}

func (s *Store) ListStatusEvents(ctx context.Context, id uuid.UUID) ([]contract.StatusEvent, error) {
	query := `
		SELECT id, contract_id, from_stage, to_stage, changed_at, changed_by
		FROM status_log
		WHERE contract_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("listing status events: %w", err)
	}
	defer rows.Close()

	var events []contract.StatusEvent

	for rows.Next() {
		var (
			ev       contract.StatusEvent
			from, by sql.NullString
			to       string
		)

		if err := rows.Scan(&ev.ID, &ev.ContractID, &from, &to, &ev.ChangedAt, &by); err != nil {
			return nil, fmt.Errorf("scanning status event: %w", err)
		}

		ev.To = contract.Stage(to)

		if from.Valid {
			st := contract.Stage(from.String)
			ev.From = &st
		}

		if by.Valid {
			ev.ChangedBy = &by.String
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status events: %w", err)
	}

	return events, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]contract.SupplierSummary, error) {
	query := `
		SELECT supplier_cnpj,
			(ARRAY_AGG(supplier_name ORDER BY version DESC))[1],
			COUNT(*),
			MAX(version)
		FROM contracts
		WHERE deleted_at IS NULL
		GROUP BY supplier_cnpj
		ORDER BY 2 ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	defer rows.Close()

	var out []contract.SupplierSummary

	for rows.Next() {
		var sum contract.SupplierSummary
		if err := rows.Scan(&sum.CNPJ, &sum.Name, &sum.Total, &sum.MaxVersion); err != nil {
			return nil, fmt.Errorf("scanning supplier: %w", err)
		}

		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suppliers: %w", err)
	}

	return out, nil
}
