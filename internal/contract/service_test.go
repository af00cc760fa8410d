package contract_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

type mocks struct {
	repo     *contract.MockRepository
	registry *contract.MockRegistry
	docs     *contract.MockGenerator
}

func newService(t *testing.T) (*contract.Service, mocks) {
	ctrl := gomock.NewController(t)

	m := mocks{
		repo:     contract.NewMockRepository(ctrl),
		registry: contract.NewMockRegistry(ctrl),
		docs:     contract.NewMockGenerator(ctrl),
	}

	return contract.NewService(m.repo, m.registry, m.docs), m
}

var acme = &registry.Company{
	CNPJ:      "11222333000181",
	LegalName: "ACME SERVICOS LTDA",
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    contract.CreateParams
		setupMock func(m mocks)
		wantErr   bool
		errIs     error
	}

	valid := contract.CreateParams{
		CNPJ:     "11.222.333/0001-81",
		Number:   "  CT-2026-001 ",
		Template: contract.TemplateNDA,
		Actor:    "maria",
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m mocks) {
				m.registry.EXPECT().Lookup(gomock.Any(), valid.CNPJ).Return(acme, nil)
				m.repo.EXPECT().
					CreateContract(gomock.Any(), gomock.Any(), "maria").
					DoAndReturn(func(_ context.Context, c *contract.Contract, _ string) error {
						assert.Equal(t, "CT-2026-001", c.Number)
						assert.Equal(t, contract.StageIntake, c.Stage)
						assert.Equal(t, "11222333000181", c.SupplierCNPJ)
						c.ID = uuid.New()
						c.Version = 3
						c.CreatedAt = time.Now()
						return nil
					})
				m.docs.EXPECT().
					Generate(acme, "CT-2026-001", contract.TemplateNDA, 3).
					Return("/tmp/contratos/11222333000181/CT-2026-001_v3.docx", nil)
				m.repo.EXPECT().
					AttachDocument(gomock.Any(), gomock.Any(), "/tmp/contratos/11222333000181/CT-2026-001_v3.docx").
					Return(nil)
			},
		},
		{
			name:    "MissingNumber",
			params:  contract.CreateParams{CNPJ: valid.CNPJ, Number: "   ", Template: contract.TemplateNDA},
			wantErr: true,
			errIs:   contract.ErrNumberRequired,
		},
		{
			name:    "UnknownTemplate",
			params:  contract.CreateParams{CNPJ: valid.CNPJ, Number: "CT-1", Template: "Locação"},
			wantErr: true,
			errIs:   contract.ErrUnknownTemplate,
		},
		{
			name:   "RegistryError",
			params: valid,
			setupMock: func(m mocks) {
				m.registry.EXPECT().Lookup(gomock.Any(), valid.CNPJ).Return(nil, registry.ErrNotFound)
			},
			wantErr: true,
			errIs:   registry.ErrNotFound,
		},
		{
			name:   "GenerateError",
			params: valid,
			setupMock: func(m mocks) {
				m.registry.EXPECT().Lookup(gomock.Any(), valid.CNPJ).Return(acme, nil)
				m.repo.EXPECT().CreateContract(gomock.Any(), gomock.Any(), "maria").Return(nil)
				m.docs.EXPECT().Generate(acme, "CT-2026-001", contract.TemplateNDA, 0).Return("", errors.New("template missing"))
				m.repo.EXPECT().
					DeleteContract(gomock.Any(), gomock.Any(), gomock.Any(), "maria").
					DoAndReturn(func(_ context.Context, _ uuid.UUID, reason, _ string) error {
						assert.Contains(t, reason, "template missing")
						return nil
					})
			},
			wantErr: true,
		},
		{
			name:   "AttachErrorDiscardsContractAndFile",
			params: valid,
			setupMock: func(m mocks) {
				m.registry.EXPECT().Lookup(gomock.Any(), valid.CNPJ).Return(acme, nil)
				m.repo.EXPECT().CreateContract(gomock.Any(), gomock.Any(), "maria").Return(nil)
				m.docs.EXPECT().Generate(acme, "CT-2026-001", contract.TemplateNDA, 0).Return("/tmp/c.docx", nil)
				m.repo.EXPECT().AttachDocument(gomock.Any(), gomock.Any(), "/tmp/c.docx").Return(errors.New("connection reset"))
				m.repo.EXPECT().DeleteContract(gomock.Any(), gomock.Any(), gomock.Any(), "maria").Return(nil)
				m.docs.EXPECT().Remove("/tmp/c.docx").Return(nil)
			},
			wantErr: true,
		},
		{
			name:   "DiscardFailureKeepsOriginalError",
			params: valid,
			setupMock: func(m mocks) {
				m.registry.EXPECT().Lookup(gomock.Any(), valid.CNPJ).Return(acme, nil)
				m.repo.EXPECT().CreateContract(gomock.Any(), gomock.Any(), "maria").Return(nil)
				m.docs.EXPECT().Generate(acme, "CT-2026-001", contract.TemplateNDA, 0).Return("", errors.New("template missing"))
				m.repo.EXPECT().DeleteContract(gomock.Any(), gomock.Any(), gomock.Any(), "maria").Return(contract.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, 3, got.Version)
			assert.Equal(t, "/tmp/contratos/11222333000181/CT-2026-001_v3.docx", got.FilePath)
		})
	}
}

func TestService_Move(t *testing.T) {
	id := uuid.New()

	t.Run("BackwardMoveIsAccepted", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().MoveStage(gomock.Any(), id, contract.StageIntake, "admin").Return(true, nil)

		require.NoError(t, svc.Move(context.Background(), id, contract.StageIntake, "admin"))
	})

	t.Run("SameStageIsNoop", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().MoveStage(gomock.Any(), id, contract.StageFinalized, "admin").Return(false, nil)

		require.NoError(t, svc.Move(context.Background(), id, contract.StageFinalized, "admin"))
	})

	t.Run("UnknownStage", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.Move(context.Background(), id, contract.Stage("ARQUIVADO"), "admin")
		assert.ErrorIs(t, err, contract.ErrUnknownStage)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().MoveStage(gomock.Any(), id, contract.StageLegalReview, "admin").Return(false, contract.ErrNotFound)

		err := svc.Move(context.Background(), id, contract.StageLegalReview, "admin")
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()
	reason := "Contrato duplicado por engano"

	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().GetContract(gomock.Any(), id).Return(&contract.Contract{ID: id, FilePath: "/tmp/a.docx"}, nil)
		m.repo.EXPECT().DeleteContract(gomock.Any(), id, reason, "admin").Return(nil)
		m.docs.EXPECT().Remove("/tmp/a.docx").Return(nil)

		require.NoError(t, svc.Delete(context.Background(), id, "  "+reason+"  ", "admin"))
	})

	t.Run("FileRemovalFailureIsNotReturned", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().GetContract(gomock.Any(), id).Return(&contract.Contract{ID: id, FilePath: "/tmp/a.docx"}, nil)
		m.repo.EXPECT().DeleteContract(gomock.Any(), id, reason, "admin").Return(nil)
		m.docs.EXPECT().Remove("/tmp/a.docx").Return(errors.New("permission denied"))

		require.NoError(t, svc.Delete(context.Background(), id, reason, "admin"))
	})

	t.Run("ShortJustification", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.Delete(context.Background(), id, "  duplicado     ", "admin")
		assert.ErrorIs(t, err, contract.ErrJustificationTooShort)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.EXPECT().GetContract(gomock.Any(), id).Return(nil, contract.ErrNotFound)

		err := svc.Delete(context.Background(), id, reason, "admin")
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})
}

func TestService_CountByStage(t *testing.T) {
	svc, m := newService(t)
	m.repo.EXPECT().CountByStage(gomock.Any()).Return(map[contract.Stage]int{
		contract.StageIntake:    2,
		contract.StageFinalized: 5,
	}, nil)

	got, err := svc.CountByStage(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(contract.Stages()))
	assert.Equal(t, 2, got[contract.StageIntake])
	assert.Equal(t, 0, got[contract.StageLegalReview])
	assert.Equal(t, 5, got[contract.StageFinalized])
}

func TestService_SupplierVersions(t *testing.T) {
	svc, m := newService(t)
	m.repo.EXPECT().ListSupplierVersions(gomock.Any(), "11222333000181").Return([]*contract.Contract{{Version: 2}, {Version: 1}}, nil)

	got, err := svc.SupplierVersions(context.Background(), "11.222.333/0001-81")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStage(t *testing.T) {
	st, err := contract.ParseStage("ANALISE_FORNECEDOR")
	require.NoError(t, err)
	assert.Equal(t, contract.StageSupplierReview, st)
	assert.Equal(t, "Fornecedor", st.Label())
	assert.False(t, st.Terminal())
	assert.True(t, contract.StageFinalized.Terminal())

	_, err = contract.ParseStage("finalizado")
	assert.ErrorIs(t, err, contract.ErrUnknownStage)

	stages := contract.Stages()
	assert.Equal(t, contract.StageIntake, stages[0])
	assert.Equal(t, contract.StageFinalized, stages[len(stages)-1])

	stages[0] = "MUTATED"
	assert.Equal(t, contract.StageIntake, contract.Stages()[0])
	assert.True(t, strings.HasPrefix(string(contract.StageLegalReview), "ANALISE_"))
}

func TestCheckJustification(t *testing.T) {
	assert.NoError(t, contract.CheckJustification("Contrato duplicado por engano"))
	assert.NoError(t, contract.CheckJustification("  ção ção ção ção  "))
	assert.ErrorIs(t, contract.CheckJustification("curto demais"), contract.ErrJustificationTooShort)
	assert.ErrorIs(t, contract.CheckJustification("               "), contract.ErrJustificationTooShort)
}
