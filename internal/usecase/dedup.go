package usecase

import (
	"strings"
	"time"

	"github.com/heatpumphub/backoffice/internal/entity"
)

// Projection à l'affichage : une seule ligne par client réel malgré les
// chemins de création multiples (saisie manuelle, webhook, ré-import). Les
// doublons ne sont pas supprimés en base, seulement masqués de la liste.
//
// Précédence de la clé : id du dernier payload Qhare brut > colonne/notes
// ID Qhare > email minuscule > repli synthétique par ligne (pas de dédup
// possible). Première ligne vue gagne.
func DeduplicateLeads(leads []entity.Lead) []entity.Lead {
	seen := make(map[string]bool, len(leads))
	out := make([]entity.Lead, 0, len(leads))

	for _, l := range leads {
		keys := dedupKeys(&l)

		duplicate := false
		for _, k := range keys {
			if seen[k] {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		// Une ligne gardée réserve toutes ses clés : un doublon partiel
		// (même email mais ID absent) est masqué lui aussi.
		for _, k := range keys {
			seen[k] = true
		}
		out = append(out, l)
	}

	return out
}

func dedupKeys(l *entity.Lead) []string {
	var keys []string
	if id := l.QhareInfoID(); id != "" {
		keys = append(keys, "qhare:"+id)
	}
	if id := l.EffectiveQhareID(); id != "" {
		keys = append(keys, "qhare:"+id)
	}
	if l.Email != "" {
		keys = append(keys, "email:"+strings.ToLower(l.Email))
	}
	if len(keys) == 0 {
		// Pas de clé naturelle : la ligne est gardée telle quelle.
		keys = append(keys, "row:"+l.ID)
	}
	return keys
}

// PromoteTodayStatuses : promotion d'affichage, jamais persistée. Un lead
// "rdv_planifie" dont un RDV tombe aujourd'hui apparaît "en_cours".
func PromoteTodayStatuses(leads []entity.Lead, now time.Time) []entity.Lead {
	today := now.Format("2006-01-02")
	for i := range leads {
		if leads[i].Status == entity.StatusRdvPlanifie && leads[i].HasAppointmentOn(today) {
			leads[i].Status = entity.StatusEnCours
		}
	}
	return leads
}
