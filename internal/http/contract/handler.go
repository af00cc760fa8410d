package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/document"
	"github.com/MrJamesThe3rd/contratos/internal/http/middleware"
	"github.com/MrJamesThe3rd/contratos/internal/http/request"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type Handler struct {
	svc  *contract.Service
	sla  *sla.Aggregator
	docs *document.Generator
}

func NewHandler(svc *contract.Service, agg *sla.Aggregator, docs *document.Generator) *Handler {
	return &Handler{svc: svc, sla: agg, docs: docs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(middleware.Require(auth.Role.CanCreateContracts)).Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/{id}/history", h.history)
	r.Get("/{id}/document", h.download)
	r.Get("/{id}/sla", h.stageTimes)
	r.With(middleware.Require(auth.Role.CanMoveContracts)).Patch("/{id}/stage", h.move)
	r.With(middleware.Require(auth.Role.CanDeleteContracts)).Delete("/{id}", h.delete)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contract.ErrNotFound):
		http.Error(w, "contract not found", http.StatusNotFound)
	case errors.Is(err, contract.ErrUnknownStage),
		errors.Is(err, contract.ErrUnknownTemplate),
		errors.Is(err, contract.ErrNumberRequired),
		errors.Is(err, contract.ErrJustificationTooShort),
		errors.Is(err, registry.ErrInvalidCNPJ):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, registry.ErrNotFound):
		http.Error(w, "supplier not found in registry", http.StatusUnprocessableEntity)
	default:
		slog.Error("contract request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type createContractRequest struct {
	CNPJ     string            `json:"cnpj" validate:"required"`
	Number   string            `json:"number" validate:"required"`
	Template contract.Template `json:"template" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), contract.CreateParams{
		CNPJ:     req.CNPJ,
		Number:   req.Number,
		Template: req.Template,
		Actor:    middleware.Actor(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := contract.ListFilter{}

	if s := r.URL.Query().Get("stage"); s != "" {
		st, err := contract.ParseStage(s)
		if err != nil {
			writeError(w, err)
			return
		}

		filter.Stage = &st
	}

	cs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(cs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	events, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponses(events))
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if c.FilePath == "" {
		http.Error(w, "contract has no document", http.StatusNotFound)
		return
	}

	f, err := h.docs.Open(c.FilePath)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			http.Error(w, "document file missing", http.StatusNotFound)
			return
		}

		writeError(w, err)

		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(c.FilePath)))

	if _, err := io.Copy(w, f); err != nil {
		slog.Error("failed to stream document", "contract_id", id, "error", err)
	}
}

// stageTimes reports the business time the contract spent in each stage so far.
func (h *Handler) stageTimes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	elapsed, err := h.sla.StageElapsed(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}

	clock := h.sla.Clock()

	resp := make([]stageTimeResponse, 0, len(contract.Stages()))

	for _, st := range contract.Stages() {
		if st.Terminal() {
			continue
		}

		sec := elapsed[st]
		resp = append(resp, stageTimeResponse{
			Stage:        st,
			Label:        st.Label(),
			Seconds:      sec,
			Hours:        businesshours.Hours(sec),
			BusinessDays: clock.BusinessDays(sec),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type moveRequest struct {
	Stage contract.Stage `json:"stage" validate:"required"`
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Move(r.Context(), id, req.Stage, middleware.Actor(r)); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

type deleteRequest struct {
	Justification string `json:"justification" validate:"required"`
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id, req.Justification, middleware.Actor(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
