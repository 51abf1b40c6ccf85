package usecase

import (
	"context"
	"fmt"

	"github.com/heatpumphub/backoffice/internal/entity"
)

type CreateLeadInput struct {
	Nom                 string `json:"nom"`
	Prenom              string `json:"prenom"`
	Email               string `json:"email"`
	Telephone           string `json:"telephone"`
	Adresse             string `json:"adresse"`
	Ville               string `json:"ville"`
	CodePostal          string `json:"code_postal"`
	TypeLogement        string `json:"type_logement"`
	Surface             int    `json:"surface"`
	TypeChauffageActuel string `json:"type_chauffage_actuel"`
	Notes               string `json:"notes"`
}

// CreateLead : saisie manuelle depuis le tableau de bord. Aucun push Qhare à
// la création, le lead n'a en général pas encore d'identifiant distant.
func (uc *LeadSyncUseCase) CreateLead(ctx context.Context, in CreateLeadInput) (*entity.Lead, error) {
	lead := entity.NewLead(in.Nom, in.Prenom, in.Email, in.Telephone)
	lead.Adresse = in.Adresse
	lead.Ville = in.Ville
	lead.CodePostal = in.CodePostal
	lead.TypeLogement = in.TypeLogement
	lead.Surface = in.Surface
	lead.TypeChauffageActuel = in.TypeChauffageActuel
	lead.Notes = in.Notes
	lead.Source = "manuel"
	lead.PuissanceEstimee = entity.EstimatePower(in.Surface, in.TypeLogement)
	lead.CreatedAt = uc.Now()
	lead.UpdatedAt = lead.CreatedAt

	// Les commerciaux collent parfois directement "ID Qhare: ..." dans les notes.
	if qid := entity.ExtractQhareID(in.Notes); qid != "" {
		lead.QhareID = qid
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("création du lead impossible: %w", err)
	}

	return lead, nil
}
