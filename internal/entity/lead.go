package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Entité : Lead (client ou prospect, synchronisé avec Qhare)
type Lead struct {
	ID         string `json:"id"`
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
	Adresse    string `json:"adresse"`
	Ville      string `json:"ville"`
	CodePostal string `json:"code_postal"`

	Status Status `json:"status"`

	TypeLogement        string `json:"type_logement"` // maison | appartement
	Surface             int    `json:"surface"`
	TypeChauffageActuel string `json:"type_chauffage_actuel"`
	PuissanceEstimee    string `json:"puissance_estimee,omitempty"`

	// Identifiant du lead côté Qhare. Colonne dédiée ; l'ancien format
	// "ID Qhare: <id>" dans les notes est repris par le backfill au démarrage.
	QhareID string `json:"qhare_id,omitempty"`

	Notes string `json:"notes,omitempty"`

	// Sac libre : mesures de visite technique + copie brute du dernier
	// payload webhook sous la clé "qhare_info".
	TechnicalData map[string]interface{} `json:"technical_data,omitempty"`

	Appointments []Appointment `json:"appointments"`

	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(nom, prenom, email, telephone string) *Lead {
	return &Lead{
		ID:            uuid.New().String(),
		Nom:           nom,
		Prenom:        prenom,
		Email:         email,
		Telephone:     telephone,
		Status:        StatusNouveau,
		TechnicalData: map[string]interface{}{},
		Appointments:  []Appointment{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func (l *Lead) Validate() error {
	if l.Nom == "" {
		return errors.New("nom is required")
	}
	if l.Email == "" && l.Telephone == "" {
		return errors.New("email or telephone is required")
	}
	return nil
}

// EffectiveQhareID retourne la colonne dédiée si renseignée, sinon tente
// l'extraction depuis les notes (anciens enregistrements pas encore backfillés).
func (l *Lead) EffectiveQhareID() string {
	if l.QhareID != "" {
		return l.QhareID
	}
	return ExtractQhareID(l.Notes)
}

// HasAppointmentOn compare sur la date canonique (YYYY-MM-DD).
func (l *Lead) HasAppointmentOn(date string) bool {
	for _, a := range l.Appointments {
		if normalized, err := NormalizeDate(a.Date); err == nil && normalized == date {
			return true
		}
	}
	return false
}

// BestStartDate devine la date de début de chantier : premier RDV de type
// installation, sinon première visite technique, sinon premier RDV tout court.
func (l *Lead) BestStartDate() (string, bool) {
	for _, a := range l.Appointments {
		if a.Type == AppointmentInstallation {
			return a.Date, true
		}
	}
	for _, a := range l.Appointments {
		if a.Type == AppointmentVisiteTechnique {
			return a.Date, true
		}
	}
	if len(l.Appointments) > 0 {
		return l.Appointments[0].Date, true
	}
	return "", false
}

// QhareInfoID lit l'identifiant dans la copie brute du dernier payload Qhare
// (technical_data.qhare_info), clé de dédoublonnage prioritaire.
func (l *Lead) QhareInfoID() string {
	if l.TechnicalData == nil {
		return ""
	}
	raw, ok := l.TechnicalData["qhare_info"].(map[string]interface{})
	if !ok {
		return ""
	}
	return stringify(raw["id"])
}
