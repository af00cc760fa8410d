package contract

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

const minJustificationLen = 15

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=contract
type Repository interface {
	// CreateContract assigns ID, Version and CreatedAt, and records the first status event.
	CreateContract(ctx context.Context, c *Contract, actor string) error
	AttachDocument(ctx context.Context, id uuid.UUID, path string) error
	GetContract(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListContracts(ctx context.Context, filter ListFilter) ([]*Contract, error)
	CountByStage(ctx context.Context) (map[Stage]int, error)

	// MoveStage reports false when the contract already is in the given stage.
	MoveStage(ctx context.Context, id uuid.UUID, to Stage, actor string) (bool, error)
	DeleteContract(ctx context.Context, id uuid.UUID, reason, actor string) error
	ListStatusEvents(ctx context.Context, id uuid.UUID) ([]StatusEvent, error)

	ListSuppliers(ctx context.Context) ([]SupplierSummary, error)
	ListSupplierVersions(ctx context.Context, cnpj string) ([]*Contract, error)
}

type Registry interface {
	Lookup(ctx context.Context, cnpj string) (*registry.Company, error)
}

type Generator interface {
	Generate(company *registry.Company, number string, tmpl Template, version int) (string, error)
	Remove(path string) error
}

type Service struct {
	repo     Repository
	registry Registry
	docs     Generator
}

func NewService(repo Repository, reg Registry, docs Generator) *Service {
	return &Service{repo: repo, registry: reg, docs: docs}
}

type CreateParams struct {
	CNPJ     string
	Number   string
	Template Template
	Actor    string
}

type ListFilter struct {
	Stage *Stage
}

// Create registers a contract in the intake stage and generates its document.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Contract, error) {
	number := strings.TrimSpace(params.Number)
	if number == "" {
		return nil, ErrNumberRequired
	}

	if !slices.Contains(Templates(), params.Template) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, params.Template)
	}

	company, err := s.registry.Lookup(ctx, params.CNPJ)
	if err != nil {
		return nil, fmt.Errorf("looking up supplier: %w", err)
	}

	c := &Contract{
		Number:       number,
		Template:     params.Template,
		SupplierCNPJ: company.CNPJ,
		SupplierName: company.LegalName,
		Stage:        StageIntake,
	}
	if err := s.repo.CreateContract(ctx, c, params.Actor); err != nil {
		return nil, err
	}

	path, err := s.docs.Generate(company, number, params.Template, c.Version)
	if err != nil {
		err = fmt.Errorf("generating document for contract %s: %w", c.ID, err)
		s.discard(ctx, c, "", err, params.Actor)

		return nil, err
	}

	if err := s.repo.AttachDocument(ctx, c.ID, path); err != nil {
		err = fmt.Errorf("attaching document to contract %s: %w", c.ID, err)
		s.discard(ctx, c, path, err, params.Actor)

		return nil, err
	}

	c.FilePath = path

	return c, nil
}

// discard soft-deletes a contract whose creation could not be completed, so it
// never shows up as a live contract without a document. Its version stays used.
func (s *Service) discard(ctx context.Context, c *Contract, path string, cause error, actor string) {
	reason := fmt.Sprintf("creation aborted: %v", cause)

	if err := s.repo.DeleteContract(ctx, c.ID, reason, actor); err != nil {
		slog.Error("failed to discard incomplete contract", "contract_id", c.ID, "error", err)
	}

	if path == "" {
		return
	}

	if err := s.docs.Remove(path); err != nil {
		slog.Warn("failed to remove contract document", "contract_id", c.ID, "path", path, "error", err)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.repo.GetContract(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Contract, error) {
	return s.repo.ListContracts(ctx, filter)
}

// CountByStage returns a count for every stage, including empty ones.
func (s *Service) CountByStage(ctx context.Context) (map[Stage]int, error) {
	counts, err := s.repo.CountByStage(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[Stage]int, len(stageOrder))
	for _, st := range stageOrder {
		out[st] = counts[st]
	}

	return out, nil
}

// Move puts the contract in the given stage. Any origin is accepted.
func (s *Service) Move(ctx context.Context, id uuid.UUID, to Stage, actor string) error {
	if _, err := ParseStage(string(to)); err != nil {
		return err
	}

	moved, err := s.repo.MoveStage(ctx, id, to, actor)
	if err != nil {
		return err
	}

	if !moved {
		slog.Debug("contract already in stage", "contract_id", id, "stage", to)
	}

	return nil
}

// Delete soft-deletes the contract and removes its generated document.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, justification, actor string) error {
	reason := strings.TrimSpace(justification)
	if err := CheckJustification(reason); err != nil {
		return err
	}

	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteContract(ctx, id, reason, actor); err != nil {
		return err
	}

	if c.FilePath != "" {
		if err := s.docs.Remove(c.FilePath); err != nil {
			slog.Warn("failed to remove contract document", "contract_id", id, "path", c.FilePath, "error", err)
		}
	}

	return nil
}

// CheckJustification reports whether a deletion justification is long enough.
func CheckJustification(justification string) error {
	if utf8.RuneCountInString(strings.TrimSpace(justification)) < minJustificationLen {
		return ErrJustificationTooShort
	}

	return nil
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]StatusEvent, error) {
	return s.repo.ListStatusEvents(ctx, id)
}

func (s *Service) Suppliers(ctx context.Context) ([]SupplierSummary, error) {
	return s.repo.ListSuppliers(ctx)
}

// SupplierVersions lists a supplier's contracts, newest version first.
func (s *Service) SupplierVersions(ctx context.Context, cnpj string) ([]*Contract, error) {
	return s.repo.ListSupplierVersions(ctx, registry.Digits(cnpj))
}
