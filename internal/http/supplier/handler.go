package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/document"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

type Lookup interface {
	Lookup(ctx context.Context, cnpj string) (*registry.Company, error)
}

type Handler struct {
	contracts *contract.Service
	docs      *document.Generator
	registry  Lookup
}

func NewHandler(contracts *contract.Service, docs *document.Generator, reg Lookup) *Handler {
	return &Handler{contracts: contracts, docs: docs, registry: reg}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{cnpj}/versions", h.versions)
	r.Get("/{cnpj}/archive", h.archive)
}

// RegistryRoutes exposes the company registry lookup used by the create form.
func (h *Handler) RegistryRoutes(r chi.Router) {
	r.Get("/{cnpj}", h.lookup)
}

type supplierResponse struct {
	CNPJ       string `json:"cnpj"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	MaxVersion int    `json:"max_version"`
}

type versionResponse struct {
	ID       uuid.UUID      `json:"id"`
	Number   string         `json:"number"`
	Version  int            `json:"version"`
	Stage    contract.Stage `json:"stage"`
	Template string         `json:"template"`
}

type companyResponse struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"legal_name"`
	TradeName string `json:"trade_name,omitempty"`
	Address   string `json:"address"`
	District  string `json:"district,omitempty"`
	ZipCode   string `json:"zip_code,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.contracts.Suppliers(r.Context())
	if err != nil {
		slog.Error("failed to list suppliers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]supplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		resp = append(resp, supplierResponse{CNPJ: s.CNPJ, Name: s.Name, Total: s.Total, MaxVersion: s.MaxVersion})
	}

	writeJSON(w, resp)
}

func (h *Handler) supplierContracts(w http.ResponseWriter, r *http.Request) ([]*contract.Contract, bool) {
	cs, err := h.contracts.SupplierVersions(r.Context(), chi.URLParam(r, "cnpj"))
	if err != nil {
		slog.Error("failed to list supplier versions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	if len(cs) == 0 {
		http.Error(w, "supplier has no contracts", http.StatusNotFound)
		return nil, false
	}

	return cs, true
}

func (h *Handler) versions(w http.ResponseWriter, r *http.Request) {
	cs, ok := h.supplierContracts(w, r)
	if !ok {
		return
	}

	resp := make([]versionResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, versionResponse{
			ID:       c.ID,
			Number:   c.Number,
			Version:  c.Version,
			Stage:    c.Stage,
			Template: string(c.Template),
		})
	}

	writeJSON(w, resp)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	cs, ok := h.supplierContracts(w, r)
	if !ok {
		return
	}

	paths := make([]string, 0, len(cs))
	for _, c := range cs {
		paths = append(paths, c.FilePath)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"contratos_%s.zip\"", cs[0].SupplierCNPJ))

	if err := h.docs.Archive(w, paths); err != nil {
		slog.Error("failed to create zip", "cnpj", cs[0].SupplierCNPJ, "error", err)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	company, err := h.registry.Lookup(r.Context(), chi.URLParam(r, "cnpj"))
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrInvalidCNPJ):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, registry.ErrNotFound):
			http.Error(w, "company not found", http.StatusNotFound)
		default:
			slog.Error("registry lookup failed", "error", err)
			http.Error(w, "registry unavailable", http.StatusBadGateway)
		}

		return
	}

	writeJSON(w, companyResponse{
		CNPJ:      company.CNPJ,
		LegalName: company.LegalName,
		TradeName: company.TradeName,
		Address:   company.Address(),
		District:  company.District,
		ZipCode:   company.ZipCode,
	})
}
