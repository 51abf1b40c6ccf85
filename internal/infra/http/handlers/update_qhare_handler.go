package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/heatpumphub/backoffice/internal/infra/http/middleware"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
	"github.com/heatpumphub/backoffice/internal/usecase"
)

// UpdateQhareHandler : proxy direct vers l'API Qhare pour le tableau de bord,
// qui ne peut pas appeler qhare.fr lui-même (token + CORS).
type UpdateQhareHandler struct {
	Gateway usecase.QhareGateway
}

func NewUpdateQhareHandler(gateway usecase.QhareGateway) *UpdateQhareHandler {
	return &UpdateQhareHandler{Gateway: gateway}
}

type updateQhareRequest struct {
	QhareID  string            `json:"qhareId"`
	Etat     *string           `json:"etat,omitempty"`
	SousEtat *string           `json:"sous_etat,omitempty"`
	DatePose *string           `json:"date_pose,omitempty"`
	DateFin  *string           `json:"date_fin,omitempty"`
	Comment  *string           `json:"comment,omitempty"`
	Extras   map[string]string `json:"extras,omitempty"`
}

func (h *UpdateQhareHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req updateQhareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON invalide")
		return
	}

	if req.QhareID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_QHARE_ID", "qhareId est requis")
		return
	}

	result, err := h.Gateway.UpdateLead(r.Context(), qhare.UpdateInput{
		LeadID:   req.QhareID,
		Etat:     req.Etat,
		SousEtat: req.SousEtat,
		DatePose: req.DatePose,
		DateFin:  req.DateFin,
		Comment:  req.Comment,
		Extras:   req.Extras,
	})

	if err != nil {
		middleware.RecordQharePush("proxy", "error")

		// Échec applicatif : on renvoie la réponse brute de Qhare pour le
		// diagnostic, c'est ce que le tableau de bord affiche.
		var apiErr *qhare.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success":   false,
				"qhareInfo": apiErr.Raw,
			})
			return
		}

		log.Printf("❌ [PROXY] Appel Qhare échoué pour %s: %v", req.QhareID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	middleware.RecordQharePush("proxy", "ok")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
