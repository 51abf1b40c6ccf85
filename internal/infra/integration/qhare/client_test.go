package qhare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateLeadSendsFormFields(t *testing.T) {
	var got map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lead/update", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := NewClient("tok-123", server.URL)
	result, err := client.UpdateLead(context.Background(), UpdateInput{
		LeadID:   "1683214",
		Etat:     String("Pose"),
		SousEtat: String("Planifié"),
		DatePose: String("15/06/2024"),
		Extras:   map[string]string{"type_rdv": "installation"},
	})

	assert.NoError(t, err)
	assert.Equal(t, true, result["success"])

	assert.Equal(t, "tok-123", got["access_token"][0])
	assert.Equal(t, "1683214", got["id"][0])
	assert.Equal(t, "0", got["btob"][0])
	assert.Equal(t, "NC", got["statut_entreprise"][0])
	assert.Equal(t, "Pose", got["etat"][0])
	assert.Equal(t, "Planifié", got["sous_etat"][0])
	assert.Equal(t, "15/06/2024", got["date_pose"][0])
	assert.Equal(t, "installation", got["type_rdv"][0])
	// Champ non renseigné : absent du formulaire, pas envoyé vide.
	assert.NotContains(t, got, "date_fin")
}

func TestUpdateLeadEmptyPointerClearsField(t *testing.T) {
	var got map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := NewClient("tok", server.URL)
	_, err := client.UpdateLead(context.Background(), UpdateInput{
		LeadID:   "42",
		SousEtat: String(""), // vider, pas omettre
	})

	assert.NoError(t, err)
	assert.Contains(t, got, "sous_etat")
	assert.Equal(t, "", got["sous_etat"][0])
}

func TestUpdateLeadAPIFailureIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// L'API répond 200 même quand elle refuse la mise à jour.
		w.Write([]byte(`{"success": false, "error": "lead introuvable"}`))
	}))
	defer server.Close()

	client := NewClient("tok", server.URL)
	result, err := client.UpdateLead(context.Background(), UpdateInput{LeadID: "42"})

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "qhare: lead introuvable", apiErr.Error())
	// La réponse brute reste disponible pour le diagnostic.
	assert.Equal(t, false, result["success"])
}

func TestUpdateLeadHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("tok", server.URL)
	_, err := client.UpdateLead(context.Background(), UpdateInput{LeadID: "42"})

	assert.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestUpdateLeadUnconfiguredClient(t *testing.T) {
	client := NewClient("", "https://qhare.fr/api")
	_, err := client.UpdateLead(context.Background(), UpdateInput{LeadID: "42"})
	assert.Error(t, err)
}

func TestUpdateLeadRequiresLeadID(t *testing.T) {
	client := NewClient("tok", "https://qhare.fr/api")
	_, err := client.UpdateLead(context.Background(), UpdateInput{})
	assert.Error(t, err)
}
