package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heatpumphub/backoffice/internal/infra/database"
	"github.com/heatpumphub/backoffice/internal/infra/http/handlers"
	"github.com/heatpumphub/backoffice/internal/infra/http/middleware"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
	"github.com/heatpumphub/backoffice/internal/infra/mail"
	"github.com/heatpumphub/backoffice/internal/infra/queue"
	"github.com/heatpumphub/backoffice/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Connexion Postgres impossible: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		env("RABBITMQ_USER", "guest"),
		env("RABBITMQ_PASS", "guest"),
		env("RABBITMQ_HOST", "localhost"),
		env("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ Connexion RabbitMQ impossible: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)

	// Reprises uniques au démarrage : ID Qhare encore enfouis dans les notes,
	// dates de RDV dans un ancien format.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := leadRepo.BackfillQhareIDs(ctx); err != nil {
		log.Printf("⚠️ Backfill des ID Qhare échoué: %v", err)
	} else if n > 0 {
		log.Printf("🔧 Backfill: %d lead(s) migré(s) vers la colonne qhare_id", n)
	}
	if n, err := usecase.NormalizeAppointmentDates(ctx, leadRepo); err != nil {
		log.Printf("⚠️ Normalisation des dates de RDV échouée: %v", err)
	} else if n > 0 {
		log.Printf("🔧 Backfill: dates de RDV corrigées sur %d lead(s)", n)
	}
	cancel()

	// 2. Gateways et adapters
	gateway := qhare.NewClient(
		os.Getenv("QHARE_ACCESS_TOKEN"),
		env("QHARE_API_URL", "https://qhare.fr/api"),
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	var mailer usecase.MailerInterface
	if os.Getenv("MAIL_HOST") != "" {
		port, _ := strconv.Atoi(env("MAIL_PORT", "587"))
		mailer = mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), port,
			os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			env("MAIL_FROM", "no-reply@heatpumphub.fr"),
			os.Getenv("OPS_INBOX"),
		)
	}

	// 3. Worker (vide la file des pushs différés vers Qhare)
	worker := queue.NewWorker(rabbitMQ.Ch, gateway)
	go worker.Start(queue.QueueName)

	// 4. UseCases
	ingestUC := usecase.NewIngestWebhookUseCase(leadRepo, producer, mailer)
	syncUC := usecase.NewLeadSyncUseCase(leadRepo, gateway)

	// 5. Handlers
	webhookHandler := handlers.NewWebhookHandler(ingestUC)
	updateQhareHandler := handlers.NewUpdateQhareHandler(gateway)
	leadHandler := handlers.NewLeadHandler(leadRepo, syncUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(middleware.Metrics)
	// CORS ouvert : le webhook est appelé directement par Qhare.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/api/webhook", webhookHandler.Handle)
	r.Post("/api/update-qhare", updateQhareHandler.Handle)

	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", leadHandler.List)
		r.Post("/", leadHandler.Create)
		r.Get("/{id}", leadHandler.Get)
		r.Put("/{id}", leadHandler.Update)
		r.Patch("/{id}/status", leadHandler.ChangeStatus)
		r.Post("/{id}/appointments", leadHandler.BookAppointment)
		r.Post("/{id}/start", leadHandler.StartWork)
		r.Post("/{id}/complete", leadHandler.Complete)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + env("PORT", "8080")
	log.Printf("🔥 Back-office PAC en écoute sur %s", port)
	http.ListenAndServe(port, r)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
