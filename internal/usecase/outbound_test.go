package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
)

func newSyncUC(repo *MockLeadRepository, gateway *MockQhareGateway, now time.Time) *LeadSyncUseCase {
	uc := NewLeadSyncUseCase(repo, gateway)
	uc.Now = func() time.Time { return now }
	return uc
}

func TestCompletePushesTerminer(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "12345"
	lead.Status = entity.StatusEnCours
	lead.Appointments = []entity.Appointment{
		{ID: "a", Date: "2024-04-01", Time: "10:00", Type: entity.AppointmentSuivi},
		{ID: "b", Date: "2024-03-10", Time: "09:00", Type: entity.AppointmentInstallation},
	}

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	gateway.On("UpdateLead", ctx, mock.Anything).Return(map[string]interface{}{"success": true}, nil)

	uc := newSyncUC(repo, gateway, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC))
	got, warnings, err := uc.Complete(ctx, "lead-1")

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, entity.StatusTermine, got.Status)

	gateway.AssertCalled(t, "UpdateLead", ctx, mock.MatchedBy(func(in qhare.UpdateInput) bool {
		return in.LeadID == "12345" &&
			in.Etat != nil && *in.Etat == EtatTerminer &&
			in.SousEtat != nil && *in.SousEtat == "" && // sous-état effacé
			in.DateFin != nil && *in.DateFin == "01/05/2024" &&
			in.DatePose != nil && *in.DatePose == "10/03/2024" // RDV installation
	}))
}

func TestCompleteRejectsForbiddenTransition(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.Status = entity.StatusNouveau

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)

	uc := newSyncUC(repo, gateway, time.Now())
	_, _, err := uc.Complete(ctx, "lead-1")

	assert.ErrorIs(t, err, entity.ErrForbiddenTransition)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything)
}

func TestCompleteWithoutQhareIDSkipsPush(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.Status = entity.StatusEnCours

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	uc := newSyncUC(repo, gateway, time.Now())
	got, warnings, err := uc.Complete(ctx, "lead-1")

	// Le statut local est quand même mis à jour, le push est juste sauté.
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusTermine, got.Status)
	assert.Len(t, warnings, 1)
	gateway.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything)
}

func TestBookAppointmentConflictAbortsEverything(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	// Un autre client occupe déjà la date.
	repo.On("HasAppointmentOn", ctx, "2024-06-15", "lead-1").Return(true, nil)

	uc := newSyncUC(repo, gateway, time.Now())
	_, _, err := uc.BookAppointment(ctx, "lead-1", BookAppointmentInput{
		Date: "15/06/2024",
		Time: "14:00",
		Type: entity.AppointmentInstallation,
	})

	assert.ErrorIs(t, err, entity.ErrDateConflict)
	// Premier arrivé, premier servi : aucune écriture locale ni distante.
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything)
}

func TestBookAppointmentPushesPose(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "42"

	repo.On("HasAppointmentOn", ctx, "2024-06-15", "lead-1").Return(false, nil)
	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	gateway.On("UpdateLead", ctx, mock.Anything).Return(map[string]interface{}{"success": true}, nil)

	uc := newSyncUC(repo, gateway, time.Now())
	got, warnings, err := uc.BookAppointment(ctx, "lead-1", BookAppointmentInput{
		Date: "2024-06-15",
		Time: "14:00",
		Type: entity.AppointmentVisiteTechnique,
	})

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, got.Appointments, 1)
	assert.Equal(t, entity.StatusRdvPlanifie, got.Status)

	gateway.AssertCalled(t, "UpdateLead", ctx, mock.MatchedBy(func(in qhare.UpdateInput) bool {
		return in.LeadID == "42" &&
			in.Etat != nil && *in.Etat == EtatPose &&
			in.SousEtat != nil && *in.SousEtat == SousEtatPlanifie &&
			in.DatePose != nil && *in.DatePose == "15/06/2024" &&
			in.Extras["date_pose_iso"] == "2024-06-15T14:00:00" &&
			in.Extras["type_rdv"] == "visite_technique"
	}))
}

func TestBookAppointmentPushFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "42"

	repo.On("HasAppointmentOn", ctx, "2024-06-15", "lead-1").Return(false, nil)
	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	gateway.On("UpdateLead", ctx, mock.Anything).Return(nil, assert.AnError)

	uc := newSyncUC(repo, gateway, time.Now())
	got, warnings, err := uc.BookAppointment(ctx, "lead-1", BookAppointmentInput{
		Date: "2024-06-15",
		Type: entity.AppointmentInstallation,
	})

	// La mutation locale n'est jamais annulée par un push raté.
	assert.NoError(t, err)
	assert.Len(t, got.Appointments, 1)
	assert.Len(t, warnings, 1)
}

func TestStartWorkPushesInstallationEnCours(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "42"
	lead.Status = entity.StatusRdvPlanifie
	lead.Appointments = []entity.Appointment{
		{ID: "a", Date: "2024-03-10", Time: "09:00", Type: entity.AppointmentInstallation},
	}

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	gateway.On("UpdateLead", ctx, mock.Anything).Return(map[string]interface{}{"success": true}, nil)

	uc := newSyncUC(repo, gateway, time.Now())
	got, _, err := uc.StartWork(ctx, "lead-1")

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusEnCours, got.Status)

	gateway.AssertCalled(t, "UpdateLead", ctx, mock.MatchedBy(func(in qhare.UpdateInput) bool {
		return in.LeadID == "42" &&
			in.Etat == nil &&
			in.SousEtat != nil && *in.SousEtat == SousEtatInstallationEnCours &&
			in.DatePose != nil && *in.DatePose == "10/03/2024"
	}))
}

func TestUpdateLeadPushesAuditBlockSeparately(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "42"
	lead.Notes = "ID Qhare: 42"

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	gateway.On("UpdateLead", ctx, mock.Anything).Return(map[string]interface{}{"success": true}, nil)

	notes := "ID Qhare: 42\n=== AUDIT TECHNIQUE ===\nliaison: 8m\n=== FIN AUDIT ==="
	uc := newSyncUC(repo, gateway, time.Now())
	_, warnings, err := uc.UpdateLead(ctx, "lead-1", UpdateLeadInput{Notes: &notes})

	assert.NoError(t, err)
	assert.Empty(t, warnings)

	// Le bloc part en commentaire seul : pas d'état ni de date dans cet appel.
	gateway.AssertCalled(t, "UpdateLead", ctx, mock.MatchedBy(func(in qhare.UpdateInput) bool {
		return in.LeadID == "42" &&
			in.Comment != nil &&
			*in.Comment == "=== AUDIT TECHNIQUE ===\nliaison: 8m\n=== FIN AUDIT ===" &&
			in.Etat == nil && in.DatePose == nil && in.DateFin == nil
	}))
}

func TestUpdateLeadUnchangedAuditNotPushed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.QhareID = "42"
	lead.Notes = "=== AUDIT TECHNIQUE ===\nliaison: 8m\n=== FIN AUDIT ==="

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	ville := "Lyon"
	uc := newSyncUC(repo, gateway, time.Now())
	_, _, err := uc.UpdateLead(ctx, "lead-1", UpdateLeadInput{Ville: &ville})

	assert.NoError(t, err)
	gateway.AssertNotCalled(t, "UpdateLead", mock.Anything, mock.Anything)
}

func TestUpdateLeadRecomputesPower(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.TypeLogement = "maison"

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	surface := 120
	uc := newSyncUC(repo, gateway, time.Now())
	got, _, err := uc.UpdateLead(ctx, "lead-1", UpdateLeadInput{Surface: &surface})

	assert.NoError(t, err)
	assert.Equal(t, "11 kW", got.PuissanceEstimee)
}

func TestUpdateLeadTechnicalDataKeepsQhareInfo(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	gateway := new(MockQhareGateway)

	lead := entity.NewLead("Dupont", "Jean", "jean@example.com", "")
	lead.ID = "lead-1"
	lead.TechnicalData["qhare_info"] = map[string]interface{}{"id": "42"}

	repo.On("FindByID", ctx, "lead-1").Return(lead, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	uc := newSyncUC(repo, gateway, time.Now())
	got, _, err := uc.UpdateLead(ctx, "lead-1", UpdateLeadInput{
		TechnicalData: map[string]interface{}{
			"liaison":    map[string]interface{}{"distance": 9},
			"qhare_info": "écrasement interdit",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": "42"}, got.TechnicalData["qhare_info"])
	assert.Contains(t, got.TechnicalData, "liaison")
}
