package entity

type Status string

const (
	StatusNouveau     Status = "nouveau"
	StatusContacte    Status = "contacte"
	StatusRdvPlanifie Status = "rdv_planifie"
	StatusEnCours     Status = "en_cours"
	StatusTermine     Status = "termine"
)

// Transitions autorisées. L'ancien tableau de bord acceptait n'importe quel
// changement ; on valide désormais explicitement.
var statusTransitions = map[Status]map[Status]bool{
	StatusNouveau:     {StatusContacte: true, StatusRdvPlanifie: true},
	StatusContacte:    {StatusRdvPlanifie: true, StatusEnCours: true},
	StatusRdvPlanifie: {StatusContacte: true, StatusEnCours: true},
	StatusEnCours:     {StatusTermine: true},
	StatusTermine:     {},
}

func ValidStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if from == "" {
		// Ligne legacy sans statut en base : on autorise n'importe quel départ.
		return ValidStatus(to)
	}
	nexts, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

func ValidateTransition(from, to Status) error {
	if !ValidStatus(to) {
		return ErrUnknownStatus
	}
	if !CanTransition(from, to) {
		return ErrForbiddenTransition
	}
	return nil
}
