package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// L'identifiant Qhare vivait historiquement dans les notes sous la forme
// "ID Qhare: 1683214". On ne capture que la première suite de chiffres après
// le libellé ; l'API Qhare n'accepte que des identifiants numériques.
var qhareIDPattern = regexp.MustCompile(`ID Qhare:\s*(\d+)`)

// ExtractQhareID retourne "" si le libellé est absent ou non numérique.
func ExtractQhareID(notes string) string {
	m := qhareIDPattern.FindStringSubmatch(notes)
	if m == nil {
		return ""
	}
	return m[1]
}

// UpsertQhareID remplace le libellé existant ou l'ajoute en fin de notes.
// Chemin d'édition manuelle du tableau de bord : la colonne dédiée et le
// libellé legacy restent alignés.
func UpsertQhareID(notes, id string) string {
	line := fmt.Sprintf("ID Qhare: %s", id)
	if qhareIDPattern.MatchString(notes) {
		return qhareIDPattern.ReplaceAllString(notes, line)
	}
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

// Marqueurs du bloc d'audit technique inséré dans les notes par le formulaire
// de visite. Deux générations de format coexistent en base.
const (
	AuditBlockStart       = "=== AUDIT TECHNIQUE ==="
	AuditBlockEnd         = "=== FIN AUDIT ==="
	legacyAuditBlockStart = "--- AUDIT TECHNIQUE ---"
	legacyAuditBlockEnd   = "--- FIN AUDIT ---"
)

// ExtractAuditBlock retourne le bloc délimité (marqueurs inclus), ancien ou
// nouveau format, ou "" si aucun bloc complet n'est présent.
func ExtractAuditBlock(notes string) string {
	if block := between(notes, AuditBlockStart, AuditBlockEnd); block != "" {
		return block
	}
	return between(notes, legacyAuditBlockStart, legacyAuditBlockEnd)
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	j := strings.Index(s[i+len(start):], end)
	if j < 0 {
		return ""
	}
	return s[i : i+len(start)+j+len(end)]
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		// encoding/json décode les nombres en float64
		return fmt.Sprintf("%.0f", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
