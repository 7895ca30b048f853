package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/emirmehmedovic/dataavioservis-sub001/internal/audit"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/auth"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
	projectionapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/application"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
	projectionhttp "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/interfaces"
)

// ProjectionHandlers serves consumption projections and the tenant preset.
type ProjectionHandlers struct {
	service *projectionapp.Service
	presets *projectionapp.SyncRegistry
	audit   audit.Logger
	tenant  string
	log     zerolog.Logger
}

type calculateRequest struct {
	Rows []projection.InputRow `json:"rows"`
	Save bool                  `json:"save"`
}

type calculateResponse struct {
	projectionapp.Calculation
	Saved     bool   `json:"saved"`
	SaveError string `json:"save_error,omitempty"`
}

type rowsRequest struct {
	Rows []projection.InputRow `json:"rows"`
}

type presetResponse struct {
	projectionapp.Snapshot
	PendingSave bool   `json:"pending_save"`
	LoadError   string `json:"load_error,omitempty"`
}

// RegisterRoutes mounts projection routes.
func (h *ProjectionHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/projections", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Get("/preset", h.handleGetPreset)
		r.Put("/preset/rows", h.handleEditRows)
		r.Get("/export.xlsx", h.handleExport)
	})
}

func (h *ProjectionHandlers) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, fmt.Errorf("%w: decode body: %v", fueling.ErrIncompleteInputRow, err))
		return
	}
	if !req.Save {
		calc, err := h.service.Calculate(r.Context(), req.Rows)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, calculateResponse{Calculation: calc})
		return
	}

	sync, err := h.presets.Get(r.Context(), h.tenantOf(r))
	if sync == nil {
		writeError(w, h.log, err)
		return
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("preset load failed before calculate")
		calc, calcErr := h.service.Calculate(r.Context(), req.Rows)
		if calcErr != nil {
			writeError(w, h.log, calcErr)
			return
		}
		writeJSON(w, http.StatusOK, calculateResponse{Calculation: calc, SaveError: err.Error()})
		return
	}
	calc, err := h.service.CalculateAndSave(r.Context(), sync, req.Rows)
	if err != nil && !errors.Is(err, fueling.ErrPersistenceFailure) {
		writeError(w, h.log, err)
		return
	}
	resp := calculateResponse{Calculation: calc, Saved: err == nil}
	if err != nil {
		resp.SaveError = err.Error()
	} else {
		h.record(r, audit.ActionPresetSave, "")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProjectionHandlers) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	sync, err := h.presets.Get(r.Context(), h.tenantOf(r))
	if sync == nil {
		writeError(w, h.log, err)
		return
	}
	resp := presetResponse{Snapshot: sync.Snapshot(), PendingSave: sync.HasPendingSave()}
	if err != nil {
		resp.LoadError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProjectionHandlers) handleEditRows(w http.ResponseWriter, r *http.Request) {
	var req rowsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, fmt.Errorf("%w: decode body: %v", fueling.ErrIncompleteInputRow, err))
		return
	}
	sync, err := h.presets.Get(r.Context(), h.tenantOf(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := sync.Edit(req.Rows); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.record(r, audit.ActionPresetEdit, "")
	writeJSON(w, http.StatusAccepted, presetResponse{Snapshot: sync.Snapshot(), PendingSave: sync.HasPendingSave()})
}

func (h *ProjectionHandlers) handleExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sync, err := h.presets.Get(r.Context(), h.tenantOf(r))
	if sync == nil {
		writeError(w, h.log, err)
		return
	}
	snapshot := sync.Snapshot()
	if snapshot.Cached == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no calculated projection"})
		return
	}
	data, err := projectionhttp.BuildProjectionXLSX(*snapshot.Cached)
	metrics.ObserveExport("projection_xlsx", metrics.Result(err), time.Since(start))
	if err != nil {
		writeError(w, h.log, fmt.Errorf("render projection: %w", err))
		return
	}
	h.record(r, audit.ActionExport, "xlsx")
	writeAttachment(w, contentTypeXLSX, "projection.xlsx", data)
}

func (h *ProjectionHandlers) tenantOf(r *http.Request) string {
	return auth.ResolveTenant(r.Context(), h.tenant)
}

func (h *ProjectionHandlers) record(r *http.Request, action, format string) {
	entry := audit.FromRequest(r, action, audit.ResourcePreset, "default")
	entry.TenantID = h.tenantOf(r)
	entry.Actor = auth.SubjectFromContext(r.Context())
	entry.Role = string(auth.RoleFromContext(r.Context()))
	entry.Format = format
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.log.Warn().Err(err).Str("action", action).Msg("audit log failed")
	}
}
