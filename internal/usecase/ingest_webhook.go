package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/heatpumphub/backoffice/internal/entity"
	"github.com/heatpumphub/backoffice/internal/infra/queue"
)

// Sous-état poussé vers Qhare juste après l'ingestion d'un webhook : le lead
// est chez nous, il reste à planifier.
const SousEtatAPlanifier = "À planifier"

type IngestWebhookUseCase struct {
	Repo     LeadRepositoryInterface
	Producer QueueProducerInterface
	Mailer   MailerInterface // optionnel

	Now func() time.Time
}

func NewIngestWebhookUseCase(
	repo LeadRepositoryInterface,
	producer QueueProducerInterface,
	mailer MailerInterface,
) *IngestWebhookUseCase {
	return &IngestWebhookUseCase{
		Repo:     repo,
		Producer: producer,
		Mailer:   mailer,
		Now:      time.Now,
	}
}

// Execute résout le payload contre la base (ID Qhare, puis email insensible à
// la casse, sinon création) et le fusionne. Le statut local n'est jamais
// écrasé par ce chemin. Retourne le lead persisté.
func (uc *IngestWebhookUseCase) Execute(ctx context.Context, payload map[string]interface{}) (*entity.Lead, error) {
	qhareID := payloadQhareID(payload)
	email := payloadEmail(payload)

	lead, err := uc.resolve(ctx, qhareID, email)
	if err != nil {
		return nil, err
	}

	created := lead == nil
	if created {
		lead = uc.buildLead(payload, qhareID, email)
		if err := uc.Repo.Create(ctx, lead); err != nil {
			return nil, fmt.Errorf("création du lead impossible: %w", err)
		}
		log.Printf("✅ [WEBHOOK] Nouveau lead %s (%s %s)", lead.ID, lead.Prenom, lead.Nom)
	} else {
		uc.merge(lead, payload)
		lead.UpdatedAt = uc.Now()
		if err := uc.Repo.Update(ctx, lead); err != nil {
			return nil, fmt.Errorf("mise à jour du lead impossible: %w", err)
		}
		log.Printf("🔄 [WEBHOOK] Lead %s fusionné (ID Qhare: %s)", lead.ID, lead.EffectiveQhareID())
	}

	// Effets de bord best-effort : le webhook répond sans attendre Qhare ni le
	// SMTP, un échec est loggé et c'est tout.
	uc.notify(ctx, lead, created)

	return lead, nil
}

func (uc *IngestWebhookUseCase) resolve(ctx context.Context, qhareID, email string) (*entity.Lead, error) {
	if qhareID != "" {
		lead, err := uc.Repo.FindByQhareID(ctx, qhareID)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, entity.ErrLeadNotFound) {
			return nil, err
		}
	}
	if email != "" {
		lead, err := uc.Repo.FindByEmail(ctx, email)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, entity.ErrLeadNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (uc *IngestWebhookUseCase) buildLead(payload map[string]interface{}, qhareID, email string) *entity.Lead {
	lead := entity.NewLead(payloadNom(payload), payloadPrenom(payload), email, payloadTelephone(payload))
	lead.Adresse = payloadAdresse(payload)
	lead.Ville = payloadVille(payload)
	lead.CodePostal = payloadCodePostal(payload)
	lead.Source = "qhare"
	lead.CreatedAt = uc.Now()
	lead.UpdatedAt = lead.CreatedAt

	if qhareID != "" {
		lead.QhareID = qhareID
		// Le libellé dans les notes reste la référence pour les anciens écrans.
		lead.Notes = entity.UpsertQhareID(lead.Notes, qhareID)
	}

	lead.TechnicalData["qhare_info"] = payload

	uc.maybeAppendAppointment(lead, payload)

	return lead
}

// merge : champ entrant non vide gagne, sinon on garde l'existant. Seule la
// sous-clé qhare_info du sac technique est écrasée ; le reste appartient aux
// équipes terrain. Le statut n'est pas touché.
func (uc *IngestWebhookUseCase) merge(lead *entity.Lead, payload map[string]interface{}) {
	if v := payloadNom(payload); v != "" {
		lead.Nom = v
	}
	if v := payloadPrenom(payload); v != "" {
		lead.Prenom = v
	}
	if v := payloadEmail(payload); v != "" {
		lead.Email = v
	}
	if v := payloadTelephone(payload); v != "" {
		lead.Telephone = v
	}
	if v := payloadAdresse(payload); v != "" {
		lead.Adresse = v
	}
	if v := payloadVille(payload); v != "" {
		lead.Ville = v
	}
	if v := payloadCodePostal(payload); v != "" {
		lead.CodePostal = v
	}

	if qid := payloadQhareID(payload); qid != "" {
		lead.QhareID = qid
		lead.Notes = entity.UpsertQhareID(lead.Notes, qid)
	}

	if lead.TechnicalData == nil {
		lead.TechnicalData = map[string]interface{}{}
	}
	lead.TechnicalData["qhare_info"] = payload

	uc.maybeAppendAppointment(lead, payload)
}

// maybeAppendAppointment : si le payload porte une date reconnaissable et
// qu'aucun RDV existant ne tombe ce jour-là, on ajoute un RDV par défaut
// (09:00, installation, planifié). Comparaison sur la date canonique, pour
// qu'une relivraison du webhook avec un autre format de date ne duplique pas.
func (uc *IngestWebhookUseCase) maybeAppendAppointment(lead *entity.Lead, payload map[string]interface{}) {
	raw := payloadDate(payload)
	if raw == "" {
		return
	}
	date, err := entity.NormalizeDate(raw)
	if err != nil {
		log.Printf("⚠️ [WEBHOOK] Date de RDV illisible, ignorée: %q", raw)
		return
	}
	if lead.HasAppointmentOn(date) {
		return
	}
	lead.Appointments = append(lead.Appointments,
		entity.NewAppointment(date, "09:00", entity.AppointmentInstallation))
}

func (uc *IngestWebhookUseCase) notify(ctx context.Context, lead *entity.Lead, created bool) {
	qid := lead.EffectiveQhareID()
	if qid != "" {
		err := uc.Producer.PublishQharePush(ctx, queue.PushPayload{
			QhareID:  qid,
			SousEtat: strPtr(SousEtatAPlanifier),
			Origin:   "webhook",
		})
		if err != nil {
			log.Printf("⚠️ [WEBHOOK] Push différé non déposé pour %s: %v", qid, err)
		}
	} else {
		log.Printf("⚠️ [WEBHOOK] Pas d'ID Qhare exploitable, push ignoré (lead %s)", lead.ID)
	}

	if created && uc.Mailer != nil {
		// Le dial SMTP peut durer plusieurs secondes : jamais sur le chemin de
		// la réponse webhook.
		go func(l *entity.Lead) {
			if err := uc.Mailer.SendNewLeadAlert(l); err != nil {
				log.Printf("⚠️ [WEBHOOK] Alerte email non envoyée: %v", err)
			}
		}(lead)
	}
}

func strPtr(s string) *string {
	return &s
}
