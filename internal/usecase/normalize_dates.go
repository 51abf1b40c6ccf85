package usecase

import (
	"context"
	"fmt"

	"github.com/heatpumphub/backoffice/internal/entity"
)

// NormalizeAppointmentDates reprend une fois, au démarrage, les dates de RDV
// encore stockées dans un ancien format (jj/mm/aaaa notamment) vers la forme
// canonique YYYY-MM-DD. La règle du conflit par jour compare en SQL sur la
// forme exacte : une date non canonique en base échapperait au contrôle.
// Retourne le nombre de leads corrigés.
func NormalizeAppointmentDates(ctx context.Context, repo LeadRepositoryInterface) (int, error) {
	leads, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for i := range leads {
		lead := &leads[i]

		changed := false
		for j, a := range lead.Appointments {
			norm, err := entity.NormalizeDate(a.Date)
			if err != nil || norm == a.Date {
				// Date illisible : on la laisse telle quelle plutôt que de la perdre.
				continue
			}
			lead.Appointments[j].Date = norm
			changed = true
		}
		if !changed {
			continue
		}

		if err := repo.Update(ctx, lead); err != nil {
			return fixed, fmt.Errorf("normalisation des dates du lead %s: %w", lead.ID, err)
		}
		fixed++
	}

	return fixed, nil
}
