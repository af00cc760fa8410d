package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is one step of the approval workflow.
// Movement between stages is manual, so any stage may follow any other.
type Stage string

const (
	StageIntake         Stage = "FILA_INICIO"
	StageLegalReview    Stage = "ANALISE_JURIDICA_LGPD"
	StageRequester      Stage = "ANALISE_DEMANDANTE"
	StageSupplierReview Stage = "ANALISE_FORNECEDOR"
	StageFinalized      Stage = "FINALIZADO"
)

var stageOrder = []Stage{
	StageIntake,
	StageLegalReview,
	StageRequester,
	StageSupplierReview,
	StageFinalized,
}

var stageLabels = map[Stage]string{
	StageIntake:         "Fila de Início",
	StageLegalReview:    "Jurídico/LGPD",
	StageRequester:      "Demandante",
	StageSupplierReview: "Fornecedor",
	StageFinalized:      "Finalizado",
}

// Stages returns every stage in workflow order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := stageLabels[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}

	return st, nil
}

// Terminal reports whether no further work happens after this stage.
func (s Stage) Terminal() bool {
	return s == StageFinalized
}

func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}

	return string(s)
}

// Template identifies which document template a contract was generated from.
type Template string

const (
	TemplateNDA Template = "NDA"
	TemplateAPI Template = "Contrato de API"
)

// Templates returns the known templates.
func Templates() []Template {
	return []Template{TemplateNDA, TemplateAPI}
}

// Contract is a supplier contract moving through the approval workflow.
type Contract struct {
	ID           uuid.UUID
	Number       string
	Template     Template
	SupplierCNPJ string
	SupplierName string
	Version      int
	Stage        Stage
	FilePath     string
	CreatedAt    time.Time
	FinalizedAt  *time.Time
	DeletedAt    *time.Time
}

// StatusEvent is an append-only record of one stage change.
// From is nil for the event written when the contract is created.
type StatusEvent struct {
	ID         int64
	ContractID uuid.UUID
	From       *Stage
	To         Stage
	ChangedAt  time.Time
	ChangedBy  *string
}

// SupplierSummary aggregates the contracts of one supplier.
type SupplierSummary struct {
	CNPJ       string
	Name       string
	Total      int
	MaxVersion int
}
