package entity

import (
	"strings"
	"time"
)

// Formats rencontrés dans les payloads Qhare et les saisies du tableau de
// bord. Tout est ramené au format canonique YYYY-MM-DD dès la frontière.
var acceptedDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04",
	"02-01-2006",
}

// NormalizeDate canonicalise une date en YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidDate
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", ErrInvalidDate
}

// FrenchDate rend une date canonique au format attendu par Qhare (jj/mm/aaaa).
func FrenchDate(canonical string) (string, error) {
	t, err := time.Parse("2006-01-02", canonical)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format("02/01/2006"), nil
}
