package usecase

import (
	"context"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/integration/qhare"
	"github.com/heatpumphub/backoffice/internal/infra/queue"
)

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	FindByQhareID(ctx context.Context, qhareID string) (*entity.Lead, error)
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	List(ctx context.Context) ([]entity.Lead, error)
	// HasAppointmentOn : un autre lead que excludeID a-t-il un RDV ce jour-là ?
	HasAppointmentOn(ctx context.Context, date, excludeID string) (bool, error)
}

type QhareGateway interface {
	UpdateLead(ctx context.Context, input qhare.UpdateInput) (map[string]interface{}, error)
}

type QueueProducerInterface interface {
	PublishQharePush(ctx context.Context, payload queue.PushPayload) error
}

type MailerInterface interface {
	SendNewLeadAlert(lead *entity.Lead) error
}
