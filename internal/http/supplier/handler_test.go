package supplier_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/document"
	"github.com/MrJamesThe3rd/contratos/internal/http/supplier"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

func newServer(t *testing.T) (http.Handler, *contract.MockRepository, *contract.MockRegistry) {
	ctrl := gomock.NewController(t)
	repo := contract.NewMockRepository(ctrl)
	reg := contract.NewMockRegistry(ctrl)

	h := supplier.NewHandler(
		contract.NewService(repo, reg, contract.NewMockGenerator(ctrl)),
		document.NewGenerator(t.TempDir(), t.TempDir()),
		reg,
	)

	r := chi.NewRouter()
	r.Route("/suppliers", h.Routes)
	r.Route("/registry", h.RegistryRoutes)

	return r, repo, reg
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler_List(t *testing.T) {
	srv, repo, _ := newServer(t)
	repo.EXPECT().ListSuppliers(gomock.Any()).Return([]contract.SupplierSummary{
		{CNPJ: "11222333000181", Name: "ACME", Total: 2, MaxVersion: 3},
	}, nil)

	rec := get(srv, "/suppliers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"cnpj":"11222333000181","name":"ACME","total":2,"max_version":3}]`, rec.Body.String())
}

func TestHandler_Versions(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		srv, repo, _ := newServer(t)
		repo.EXPECT().ListSupplierVersions(gomock.Any(), "11222333000181").Return([]*contract.Contract{
			{ID: uuid.New(), Number: "CT-2", Version: 2, Stage: contract.StageIntake},
			{ID: uuid.New(), Number: "CT-1", Version: 1, Stage: contract.StageFinalized},
		}, nil)

		rec := get(srv, "/suppliers/11222333000181/versions")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, float64(2), got[0]["version"])
	})

	t.Run("Unknown", func(t *testing.T) {
		srv, repo, _ := newServer(t)
		repo.EXPECT().ListSupplierVersions(gomock.Any(), "11444777000161").Return(nil, nil)

		assert.Equal(t, http.StatusNotFound, get(srv, "/suppliers/11444777000161/versions").Code)
	})
}

func TestHandler_Archive(t *testing.T) {
	srv, repo, _ := newServer(t)

	dir := t.TempDir()
	p1 := filepath.Join(dir, "CT-1_v1.docx")
	p2 := filepath.Join(dir, "CT-2_v2.docx")
	require.NoError(t, os.WriteFile(p1, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("two"), 0o644))

	repo.EXPECT().ListSupplierVersions(gomock.Any(), "11222333000181").Return([]*contract.Contract{
		{SupplierCNPJ: "11222333000181", FilePath: p2},
		{SupplierCNPJ: "11222333000181", FilePath: p1},
	}, nil)

	rec := get(srv, "/suppliers/11222333000181/archive")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "CT-2_v2.docx", zr.File[0].Name)
}

func TestHandler_Lookup(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
	}

	tests := []testCase{
		{name: "Found", wantStatus: http.StatusOK},
		{name: "Invalid", err: registry.ErrInvalidCNPJ, wantStatus: http.StatusBadRequest},
		{name: "NotFound", err: registry.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "Upstream", err: assert.AnError, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, reg := newServer(t)

			var company *registry.Company
			if tt.err == nil {
				company = &registry.Company{CNPJ: "11222333000181", LegalName: "ACME", Street: "RUA A", Number: "1", City: "RIO", State: "RJ"}
			}

			reg.EXPECT().Lookup(gomock.Any(), "11222333000181").Return(company, tt.err)

			rec := get(srv, "/registry/11222333000181")
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.err == nil {
				assert.Contains(t, rec.Body.String(), `"address":"RUA A, 1 - RIO/RJ"`)
			}
		})
	}
}
