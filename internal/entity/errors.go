package entity

import "errors"

var (
	ErrLeadNotFound        = errors.New("lead introuvable")
	ErrDuplicateLead       = errors.New("un lead existe déjà avec cet identifiant Qhare")
	ErrUnknownStatus       = errors.New("statut inconnu")
	ErrForbiddenTransition = errors.New("transition de statut non autorisée")
	ErrDateConflict        = errors.New("un autre client a déjà un rendez-vous ce jour-là")
	ErrInvalidDate         = errors.New("date invalide")
)
