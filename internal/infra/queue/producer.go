package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PushPayload : une mise à jour Qhare différée. Le webhook entrant ne doit
// jamais attendre l'API Qhare pour répondre ; il dépose le push ici et le
// worker s'en charge.
type PushPayload struct {
	QhareID  string            `json:"qhare_id"`
	Etat     string            `json:"etat,omitempty"`
	SousEtat *string           `json:"sous_etat,omitempty"`
	DatePose string            `json:"date_pose,omitempty"`
	DateFin  string            `json:"date_fin,omitempty"`
	Comment  string            `json:"comment,omitempty"`
	Extras   map[string]string `json:"extras,omitempty"`
	Origin   string            `json:"origin"` // ex: "webhook"
}

type QueueProducerInterface interface {
	PublishQharePush(ctx context.Context, payload PushPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishQharePush(ctx context.Context, payload PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erreur de sérialisation du payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Message écrit sur disque
		},
	)
	if err != nil {
		return fmt.Errorf("publication RabbitMQ échouée: %v", err)
	}

	return nil
}
