package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
)

// Smoke test manuel de l'API Qhare : pousse une mise à jour réelle sur un lead
// de test. À lancer à la main, jamais en CI.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Fichier .env introuvable, variables d'environnement système utilisées")
	}

	token := os.Getenv("QHARE_ACCESS_TOKEN")
	if token == "" {
		log.Fatal("❌ QHARE_ACCESS_TOKEN doit être configuré dans le .env")
	}

	leadID := os.Getenv("QHARE_TEST_LEAD_ID")
	if leadID == "" {
		log.Fatal("❌ QHARE_TEST_LEAD_ID doit pointer sur un lead de test (jamais un vrai client)")
	}

	baseURL := os.Getenv("QHARE_API_URL")
	if baseURL == "" {
		baseURL = "https://qhare.fr/api"
	}

	client := qhare.NewClient(token, baseURL)

	input := qhare.UpdateInput{
		LeadID:   leadID,
		Etat:     qhare.String("Pose"),
		SousEtat: qhare.String("Planifié"),
		DatePose: qhare.String("15/06/2024"),
		Comment:  qhare.String("Test d'intégration, à ignorer"),
	}

	fmt.Println("🔄 Mise à jour du lead sur Qhare...")
	fmt.Printf("📋 Données:\n")
	fmt.Printf("   Lead: %s\n", input.LeadID)
	fmt.Printf("   État: %s / %s\n", *input.Etat, *input.SousEtat)
	fmt.Printf("   Date de pose: %s\n\n", *input.DatePose)

	result, err := client.UpdateLead(context.Background(), input)
	if err != nil {
		log.Fatalf("Erreur lors de la mise à jour Qhare: %v", err)
	}

	fmt.Printf("Lead mis à jour avec succès sur Qhare !\n")
	fmt.Printf(" Réponse: %v\n", result)
}
