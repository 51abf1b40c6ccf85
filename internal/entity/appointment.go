package entity

import "github.com/google/uuid"

type AppointmentType string

const (
	AppointmentInstallation    AppointmentType = "installation"
	AppointmentVisiteTechnique AppointmentType = "visite_technique"
	AppointmentSuivi           AppointmentType = "suivi"
)

type AppointmentStatus string

const (
	AppointmentPlanifie AppointmentStatus = "planifie"
	AppointmentTermine  AppointmentStatus = "termine"
	AppointmentAnnule   AppointmentStatus = "annule"
)

// Les RDV sont stockés en liste JSONB sur la ligne du lead, jamais supprimés.
type Appointment struct {
	ID     string            `json:"id"`
	Date   string            `json:"date"` // YYYY-MM-DD (canonique)
	Time   string            `json:"time"` // HH:MM
	Type   AppointmentType   `json:"type"`
	Status AppointmentStatus `json:"status"`
	Notes  string            `json:"notes,omitempty"`
}

func NewAppointment(date, heure string, kind AppointmentType) Appointment {
	return Appointment{
		ID:     uuid.New().String(),
		Date:   date,
		Time:   heure,
		Type:   kind,
		Status: AppointmentPlanifie,
	}
}

func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case AppointmentInstallation, AppointmentVisiteTechnique, AppointmentSuivi:
		return true
	}
	return false
}
