package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
)

// États et sous-états tels que l'API Qhare les attend.
const (
	EtatTerminer = "Terminer"
	EtatPose     = "Pose"

	SousEtatPlanifie            = "Planifié"
	SousEtatInstallationEnCours = "Installation en cours"
)

// LeadSyncUseCase traduit une mutation locale en appels Qhare. La base locale
// reste la source de vérité du tableau de bord : un push raté ne fait jamais
// échouer la mutation, il remonte en avertissement.
type LeadSyncUseCase struct {
	Repo    LeadRepositoryInterface
	Gateway QhareGateway

	Now func() time.Time
}

func NewLeadSyncUseCase(repo LeadRepositoryInterface, gateway QhareGateway) *LeadSyncUseCase {
	return &LeadSyncUseCase{
		Repo:    repo,
		Gateway: gateway,
		Now:     time.Now,
	}
}

type BookAppointmentInput struct {
	Date  string                 `json:"date"`
	Time  string                 `json:"time"`
	Type  entity.AppointmentType `json:"type"`
	Notes string                 `json:"notes,omitempty"`
}

type UpdateLeadInput struct {
	Nom                 *string                `json:"nom,omitempty"`
	Prenom              *string                `json:"prenom,omitempty"`
	Email               *string                `json:"email,omitempty"`
	Telephone           *string                `json:"telephone,omitempty"`
	Adresse             *string                `json:"adresse,omitempty"`
	Ville               *string                `json:"ville,omitempty"`
	CodePostal          *string                `json:"code_postal,omitempty"`
	TypeLogement        *string                `json:"type_logement,omitempty"`
	Surface             *int                   `json:"surface,omitempty"`
	TypeChauffageActuel *string                `json:"type_chauffage_actuel,omitempty"`
	Notes               *string                `json:"notes,omitempty"`
	QhareID             *string                `json:"qhare_id,omitempty"`
	TechnicalData       map[string]interface{} `json:"technical_data,omitempty"`
}

// ChangeStatus valide la transition, persiste, et pousse vers Qhare quand le
// statut cible le justifie (clôture de chantier).
func (uc *LeadSyncUseCase) ChangeStatus(ctx context.Context, leadID string, to entity.Status) (*entity.Lead, []string, error) {
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	if err := entity.ValidateTransition(lead.Status, to); err != nil {
		return nil, nil, err
	}

	lead.Status = to
	lead.UpdatedAt = uc.Now()
	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, nil, fmt.Errorf("mise à jour du statut impossible: %w", err)
	}

	var warnings []string
	if to == entity.StatusTermine {
		warnings = uc.pushCompletion(ctx, lead)
	}

	return lead, warnings, nil
}

// Complete clôture le chantier : statut local "termine", puis push
// etat=Terminer, sous-état vidé, date_fin=aujourd'hui, date_pose=meilleure
// estimation de début de chantier.
func (uc *LeadSyncUseCase) Complete(ctx context.Context, leadID string) (*entity.Lead, []string, error) {
	return uc.ChangeStatus(ctx, leadID, entity.StatusTermine)
}

func (uc *LeadSyncUseCase) pushCompletion(ctx context.Context, lead *entity.Lead) []string {
	qid, warn := uc.pushableID(lead)
	if qid == "" {
		return warn
	}

	dateFin := uc.Now().Format("02/01/2006")

	input := qhare.UpdateInput{
		LeadID:   qid,
		Etat:     qhare.String(EtatTerminer),
		SousEtat: qhare.String(""), // clôture : le sous-état est effacé
		DateFin:  qhare.String(dateFin),
	}
	if start, ok := lead.BestStartDate(); ok {
		if fr, err := frenchDate(start); err == nil {
			input.DatePose = qhare.String(fr)
		}
	}

	return uc.push(ctx, lead.ID, input)
}

// BookAppointment vérifie d'abord la règle maison : deux clients différents ne
// peuvent pas avoir un RDV le même jour. Un conflit annule toute l'opération,
// aucune écriture locale ni distante.
func (uc *LeadSyncUseCase) BookAppointment(ctx context.Context, leadID string, in BookAppointmentInput) (*entity.Lead, []string, error) {
	date, err := entity.NormalizeDate(in.Date)
	if err != nil {
		return nil, nil, entity.ErrInvalidDate
	}
	if !entity.ValidAppointmentType(in.Type) {
		return nil, nil, fmt.Errorf("type de rendez-vous inconnu: %q", in.Type)
	}

	taken, err := uc.Repo.HasAppointmentOn(ctx, date, leadID)
	if err != nil {
		return nil, nil, fmt.Errorf("vérification du planning impossible: %w", err)
	}
	if taken {
		return nil, nil, entity.ErrDateConflict
	}

	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	appt := entity.NewAppointment(date, in.Time, in.Type)
	appt.Notes = in.Notes
	if appt.Time == "" {
		appt.Time = "09:00"
	}
	lead.Appointments = append(lead.Appointments, appt)

	// La prise de RDV promeut le statut quand la transition est permise ;
	// un lead déjà en chantier garde son statut.
	if lead.Status != entity.StatusRdvPlanifie && entity.CanTransition(lead.Status, entity.StatusRdvPlanifie) {
		lead.Status = entity.StatusRdvPlanifie
	}
	lead.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, nil, fmt.Errorf("enregistrement du rendez-vous impossible: %w", err)
	}

	qid, warnings := uc.pushableID(lead)
	if qid != "" {
		fr, _ := frenchDate(date)
		input := qhare.UpdateInput{
			LeadID:   qid,
			Etat:     qhare.String(EtatPose),
			SousEtat: qhare.String(SousEtatPlanifie),
			DatePose: qhare.String(fr),
			Extras: map[string]string{
				"date_pose_iso": date + "T" + appt.Time + ":00",
				"type_rdv":      string(appt.Type),
			},
		}
		warnings = append(warnings, uc.push(ctx, lead.ID, input)...)
	}

	return lead, warnings, nil
}

// StartWork : action "simuler le début du chantier". Statut local en_cours,
// sous-état distant "Installation en cours" avec la même estimation de date
// de pose que la clôture.
func (uc *LeadSyncUseCase) StartWork(ctx context.Context, leadID string) (*entity.Lead, []string, error) {
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	if err := entity.ValidateTransition(lead.Status, entity.StatusEnCours); err != nil {
		return nil, nil, err
	}

	lead.Status = entity.StatusEnCours
	lead.UpdatedAt = uc.Now()
	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, nil, fmt.Errorf("mise à jour du statut impossible: %w", err)
	}

	qid, warnings := uc.pushableID(lead)
	if qid != "" {
		input := qhare.UpdateInput{
			LeadID:   qid,
			SousEtat: qhare.String(SousEtatInstallationEnCours),
		}
		if start, ok := lead.BestStartDate(); ok {
			if fr, err := frenchDate(start); err == nil {
				input.DatePose = qhare.String(fr)
			}
		}
		warnings = append(warnings, uc.push(ctx, lead.ID, input)...)
	}

	return lead, warnings, nil
}

// UpdateLead applique une édition partielle du tableau de bord. Si les notes
// résultantes contiennent un bloc d'audit nouveau ou modifié, le bloc part en
// commentaire Qhare dans un appel séparé : un échec de commentaire ne bloque
// pas une mise à jour d'état, et réciproquement.
func (uc *LeadSyncUseCase) UpdateLead(ctx context.Context, leadID string, in UpdateLeadInput) (*entity.Lead, []string, error) {
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	previousAudit := entity.ExtractAuditBlock(lead.Notes)

	applyString(&lead.Nom, in.Nom)
	applyString(&lead.Prenom, in.Prenom)
	applyString(&lead.Email, in.Email)
	applyString(&lead.Telephone, in.Telephone)
	applyString(&lead.Adresse, in.Adresse)
	applyString(&lead.Ville, in.Ville)
	applyString(&lead.CodePostal, in.CodePostal)
	applyString(&lead.TypeLogement, in.TypeLogement)
	applyString(&lead.TypeChauffageActuel, in.TypeChauffageActuel)
	applyString(&lead.Notes, in.Notes)

	if in.Surface != nil {
		lead.Surface = *in.Surface
	}
	if in.Surface != nil || in.TypeLogement != nil {
		lead.PuissanceEstimee = entity.EstimatePower(lead.Surface, lead.TypeLogement)
	}

	if in.QhareID != nil {
		lead.QhareID = *in.QhareID
		lead.Notes = entity.UpsertQhareID(lead.Notes, *in.QhareID)
	}

	if in.TechnicalData != nil {
		if lead.TechnicalData == nil {
			lead.TechnicalData = map[string]interface{}{}
		}
		// Fusion par clé de premier niveau ; qhare_info n'est jamais écrasé
		// par une saisie du tableau de bord.
		for k, v := range in.TechnicalData {
			if k == "qhare_info" {
				continue
			}
			lead.TechnicalData[k] = v
		}
	}

	lead.UpdatedAt = uc.Now()
	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, nil, fmt.Errorf("mise à jour du lead impossible: %w", err)
	}

	var warnings []string
	currentAudit := entity.ExtractAuditBlock(lead.Notes)
	if currentAudit != "" && currentAudit != previousAudit {
		qid, warn := uc.pushableID(lead)
		warnings = append(warnings, warn...)
		if qid != "" {
			input := qhare.UpdateInput{
				LeadID:  qid,
				Comment: qhare.String(currentAudit),
			}
			warnings = append(warnings, uc.push(ctx, lead.ID, input)...)
		}
	}

	return lead, warnings, nil
}

// pushableID : précondition de tout push sortant. Sans identifiant numérique,
// on loggue et on continue, le push est simplement sauté.
func (uc *LeadSyncUseCase) pushableID(lead *entity.Lead) (string, []string) {
	qid := lead.EffectiveQhareID()
	if qid == "" {
		log.Printf("⚠️ [SYNC] Lead %s sans ID Qhare, push ignoré", lead.ID)
		return "", []string{"synchronisation Qhare ignorée : aucun ID Qhare sur ce lead"}
	}
	return qid, nil
}

func (uc *LeadSyncUseCase) push(ctx context.Context, leadID string, input qhare.UpdateInput) []string {
	if _, err := uc.Gateway.UpdateLead(ctx, input); err != nil {
		log.Printf("❌ [SYNC] Push Qhare échoué pour le lead %s: %v", leadID, err)
		return []string{fmt.Sprintf("la mise à jour Qhare a échoué : %v", err)}
	}
	return nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func frenchDate(canonical string) (string, error) {
	// Les RDV sont stockés au format canonique, mais d'anciens enregistrements
	// peuvent encore porter un autre format.
	norm, err := entity.NormalizeDate(canonical)
	if err != nil {
		return "", err
	}
	return entity.FrenchDate(norm)
}
