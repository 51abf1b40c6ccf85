package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/http/middleware"
	"github.com/heatpumphub/backoffice/internal/usecase"
)

type WebhookHandler struct {
	Ingest *usecase.IngestWebhookUseCase
}

func NewWebhookHandler(ingest *usecase.IngestWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{Ingest: ingest}
}

type webhookResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Lead    *entity.Lead `json:"lead,omitempty"`
}

// Handle reçoit les notifications push de Qhare. Particularité assumée : une
// erreur de persistance répond quand même 200 (success:false dans le corps),
// sinon Qhare relivre en boucle dans une file que personne ne vide.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("❌ [WEBHOOK] Corps illisible: %v", err)
		middleware.RecordWebhookLead("error")
		writeJSON(w, http.StatusInternalServerError, webhookResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	lead, err := h.Ingest.Execute(r.Context(), payload)
	if err != nil {
		log.Printf("❌ [WEBHOOK] Ingestion échouée: %v", err)
		middleware.RecordWebhookLead("error")
		writeJSON(w, http.StatusOK, webhookResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	middleware.RecordWebhookLead("ok")
	writeJSON(w, http.StatusOK, webhookResponse{
		Success: true,
		Message: "Webhook reçu avec succès",
		Lead:    lead,
	})
}
