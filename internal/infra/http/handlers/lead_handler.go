package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/http/middleware"
	"github.com/heatpumphub/backoffice/internal/usecase"
)

type LeadHandler struct {
	Repo usecase.LeadRepositoryInterface
	Sync *usecase.LeadSyncUseCase
}

func NewLeadHandler(repo usecase.LeadRepositoryInterface, sync *usecase.LeadSyncUseCase) *LeadHandler {
	return &LeadHandler{Repo: repo, Sync: sync}
}

type leadResponse struct {
	Lead     *entity.Lead `json:"lead"`
	Warnings []string     `json:"warnings,omitempty"`
}

// List renvoie la projection d'affichage : doublons masqués, statuts promus
// quand un RDV tombe aujourd'hui. Les lignes en base ne bougent pas.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Repo.List(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "DATABASE_ERROR", "Lecture des leads impossible")
		return
	}

	leads = usecase.PromoteTodayStatuses(leads, time.Now())
	leads = usecase.DeduplicateLeads(leads)

	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": leads})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadResponse{Lead: lead})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON invalide")
		return
	}

	lead, err := h.Sync.CreateLead(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, leadResponse{Lead: lead})
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON invalide")
		return
	}

	lead, warnings, err := h.Sync.UpdateLead(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leadResponse{Lead: lead, Warnings: warnings})
}

func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status entity.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON invalide")
		return
	}

	lead, warnings, err := h.Sync.ChangeStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leadResponse{Lead: lead, Warnings: warnings})
}

func (h *LeadHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var input usecase.BookAppointmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON invalide")
		return
	}

	lead, warnings, err := h.Sync.BookAppointment(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		if errors.Is(err, entity.ErrDateConflict) {
			middleware.RecordAppointmentConflict()
		}
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leadResponse{Lead: lead, Warnings: warnings})
}

func (h *LeadHandler) StartWork(w http.ResponseWriter, r *http.Request) {
	lead, warnings, err := h.Sync.StartWork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadResponse{Lead: lead, Warnings: warnings})
}

func (h *LeadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	lead, warnings, err := h.Sync.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadResponse{Lead: lead, Warnings: warnings})
}

func (h *LeadHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		writeErrorResponse(w, http.StatusNotFound, "LEAD_NOT_FOUND", err.Error())
	case errors.Is(err, entity.ErrDateConflict):
		writeErrorResponse(w, http.StatusConflict, "DATE_CONFLICT", err.Error())
	case errors.Is(err, entity.ErrDuplicateLead):
		writeErrorResponse(w, http.StatusConflict, "DUPLICATE_LEAD", err.Error())
	case errors.Is(err, entity.ErrForbiddenTransition), errors.Is(err, entity.ErrUnknownStatus):
		writeErrorResponse(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, entity.ErrInvalidDate):
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_DATE", err.Error())
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
