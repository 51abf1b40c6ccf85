package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
)

// QhareGateway : contrat minimal vers l'API Qhare, mockable en test.
type QhareGateway interface {
	UpdateLead(ctx context.Context, input qhare.UpdateInput) (map[string]interface{}, error)
}

type Worker struct {
	Channel *amqp.Channel
	Gateway QhareGateway
}

func NewWorker(ch *amqp.Channel, gateway QhareGateway) *Worker {
	return &Worker{
		Channel: ch,
		Gateway: gateway,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manuel, plus sûr)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Impossible d'enregistrer le consommateur RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload PushPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON invalide: %s", err)
				// Message pourri : rejet sans requeue pour ne pas bloquer la file.
				d.Nack(false, false)
				continue
			}

			log.Printf("⚙️ [WORKER] Push Qhare pour le lead %s (origine: %s)", payload.QhareID, payload.Origin)

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Push Qhare échoué: %s", err)
				// Une seule tentative : le message part en DLQ pour inspection.
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] Lead %s mis à jour sur Qhare", payload.QhareID)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker en attente sur la file '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload PushPayload) error {
	input := qhare.UpdateInput{
		LeadID:   payload.QhareID,
		SousEtat: payload.SousEtat,
		Extras:   payload.Extras,
	}
	if payload.Etat != "" {
		input.Etat = qhare.String(payload.Etat)
	}
	if payload.DatePose != "" {
		input.DatePose = qhare.String(payload.DatePose)
	}
	if payload.DateFin != "" {
		input.DateFin = qhare.String(payload.DateFin)
	}
	if payload.Comment != "" {
		input.Comment = qhare.String(payload.Comment)
	}

	_, err := w.Gateway.UpdateLead(ctx, input)
	return err
}
