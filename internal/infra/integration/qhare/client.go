package qhare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Valeurs imposées par l'API Qhare : les payloads sans déclaration B2B ni
// statut d'entreprise sont rejetés.
const (
	fieldBtoB             = "0"
	fieldStatutEntreprise = "NC"
)

type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewClient(accessToken, baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.baseURL != ""
}

// UpdateLead pousse une mise à jour sur <base>/lead/update. Corps encodé en
// formulaire (jamais en query string : les commentaires libres peuvent être
// longs), token transmis comme champ de formulaire. Une seule tentative.
func (c *Client) UpdateLead(ctx context.Context, input UpdateInput) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("qhare: client non configuré (QHARE_ACCESS_TOKEN)")
	}
	if input.LeadID == "" {
		return nil, fmt.Errorf("qhare: lead id manquant")
	}

	form := url.Values{}
	form.Set("access_token", c.accessToken)
	form.Set("id", input.LeadID)
	form.Set("btob", fieldBtoB)
	form.Set("statut_entreprise", fieldStatutEntreprise)

	setOpt(form, "etat", input.Etat)
	setOpt(form, "sous_etat", input.SousEtat)
	setOpt(form, "date_pose", input.DatePose)
	setOpt(form, "date_fin", input.DateFin)
	setOpt(form, "comment", input.Comment)
	for k, v := range input.Extras {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/lead/update", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qhare: requête échouée: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("qhare: status %d - %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("qhare: réponse illisible: %w", err)
	}

	// L'API répond 200 même en échec applicatif.
	if success, ok := result["success"].(bool); ok && !success {
		return result, &APIError{Raw: result}
	}
	if _, hasErr := result["error"]; hasErr {
		return result, &APIError{Raw: result}
	}

	return result, nil
}

func setOpt(form url.Values, key string, v *string) {
	if v != nil {
		form.Set(key, *v)
	}
}
