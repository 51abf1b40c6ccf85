package usecase

import (
	"fmt"
	"strings"
)

// Le webhook Qhare n'a pas de schéma garanti : les clés varient selon la
// configuration du compte (français ou anglais). On pioche la première clé
// renseignée.

func firstString(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return fmt.Sprintf("%.0f", x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", x))
	}
}

func payloadNom(p map[string]interface{}) string {
	return firstString(p, "nom", "lastname", "last_name", "name")
}

func payloadPrenom(p map[string]interface{}) string {
	return firstString(p, "prenom", "firstname", "first_name")
}

// payloadEmail conserve la casse saisie ; la résolution et le dédoublonnage
// replient en minuscules au moment de comparer, jamais au stockage.
func payloadEmail(p map[string]interface{}) string {
	return firstString(p, "email", "mail")
}

func payloadTelephone(p map[string]interface{}) string {
	return firstString(p, "telephone", "phone", "tel", "mobile")
}

func payloadAdresse(p map[string]interface{}) string {
	return firstString(p, "adresse", "address")
}

func payloadVille(p map[string]interface{}) string {
	return firstString(p, "ville", "city")
}

func payloadCodePostal(p map[string]interface{}) string {
	return firstString(p, "code_postal", "zipcode", "zip", "cp")
}

func payloadQhareID(p map[string]interface{}) string {
	return firstString(p, "id", "lead_id", "qhare_id")
}

// payloadDate : date exploitable comme RDV initial, si le webhook en porte une.
func payloadDate(p map[string]interface{}) string {
	return firstString(p, "date_rdv", "rdv", "date", "appointment_date")
}
