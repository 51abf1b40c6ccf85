package qhare

// UpdateInput décrit une mise à jour de lead côté Qhare. Les champs à pointeur
// distinguent "ne pas toucher" (nil) de "vider" (pointeur sur chaîne vide) :
// clôturer un chantier efface le sous-état.
type UpdateInput struct {
	LeadID   string
	Etat     *string
	SousEtat *string
	DatePose *string // jj/mm/aaaa
	DateFin  *string // jj/mm/aaaa
	Comment  *string
	Extras   map[string]string
}

// String retourne un pointeur, pour construire les UpdateInput en ligne.
func String(s string) *string {
	return &s
}

// APIError : l'API a répondu mais signale un échec applicatif. On conserve la
// réponse brute pour le diagnostic côté utilisateur.
type APIError struct {
	Raw map[string]interface{}
}

func (e *APIError) Error() string {
	if msg, ok := e.Raw["error"].(string); ok && msg != "" {
		return "qhare: " + msg
	}
	return "qhare: échec signalé par l'API"
}
