package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heatpumphub/backoffice/internal/entity"
)

func leadWithQhareInfo(id, email string) entity.Lead {
	l := entity.Lead{ID: "row-" + id + email, Email: email, TechnicalData: map[string]interface{}{}}
	if id != "" {
		l.TechnicalData["qhare_info"] = map[string]interface{}{"id": id}
	}
	return l
}

func TestDeduplicateKeepsFirstAcrossKeys(t *testing.T) {
	// Trois lignes, un seul client réel : même ID Qhare pour les deux
	// premières, même email pour la première et la troisième.
	a := leadWithQhareInfo("7", "x@example.com")
	b := leadWithQhareInfo("7", "y@example.com")
	c := leadWithQhareInfo("", "x@example.com")

	out := DeduplicateLeads([]entity.Lead{a, b, c})

	assert.Len(t, out, 1)
	assert.Equal(t, a.ID, out[0].ID)
}

func TestDeduplicateNotesIDMatchesWebhookID(t *testing.T) {
	manual := entity.Lead{ID: "m", Notes: "Rappel prévu\nID Qhare: 1683214"}
	webhook := leadWithQhareInfo("1683214", "client@example.com")

	out := DeduplicateLeads([]entity.Lead{manual, webhook})

	assert.Len(t, out, 1)
	assert.Equal(t, "m", out[0].ID)
}

func TestDeduplicateEmailCaseInsensitive(t *testing.T) {
	a := entity.Lead{ID: "a", Email: "Jean@Example.com"}
	b := entity.Lead{ID: "b", Email: "jean@example.com"}

	out := DeduplicateLeads([]entity.Lead{a, b})

	assert.Len(t, out, 1)
}

func TestDeduplicateKeepsKeylessRows(t *testing.T) {
	// Sans ID ni email, rien ne permet de rapprocher : on garde tout.
	a := entity.Lead{ID: "a", Telephone: "0601020304"}
	b := entity.Lead{ID: "b", Telephone: "0601020304"}

	out := DeduplicateLeads([]entity.Lead{a, b})

	assert.Len(t, out, 2)
}

func TestPromoteTodayStatuses(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)

	today := entity.Lead{
		Status:       entity.StatusRdvPlanifie,
		Appointments: []entity.Appointment{{Date: "15/06/2024"}},
	}
	tomorrow := entity.Lead{
		Status:       entity.StatusRdvPlanifie,
		Appointments: []entity.Appointment{{Date: "2024-06-16"}},
	}
	done := entity.Lead{
		Status:       entity.StatusTermine,
		Appointments: []entity.Appointment{{Date: "2024-06-15"}},
	}

	out := PromoteTodayStatuses([]entity.Lead{today, tomorrow, done}, now)

	assert.Equal(t, entity.StatusEnCours, out[0].Status)
	assert.Equal(t, entity.StatusRdvPlanifie, out[1].Status)
	assert.Equal(t, entity.StatusTermine, out[2].Status)
}
