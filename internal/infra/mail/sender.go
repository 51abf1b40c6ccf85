package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/heatpumphub/backoffice/internal/entity"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	OpsInbox string
}

func NewEmailSender(host string, port int, user, password, from, opsInbox string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		OpsInbox: opsInbox,
	}
}

func (s *EmailSender) Configured() bool {
	return s.Host != "" && s.OpsInbox != ""
}

// SendNewLeadAlert prévient l'équipe qu'un lead vient d'arriver par webhook.
// Appelé en best-effort : un échec SMTP est loggé, jamais remonté au webhook.
func (s *EmailSender) SendNewLeadAlert(lead *entity.Lead) error {
	if !s.Configured() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.OpsInbox)
	m.SetHeader("Subject", fmt.Sprintf("Nouveau lead Qhare : %s %s", lead.Prenom, lead.Nom))
	m.SetBody("text/plain", fmt.Sprintf(
		"Un nouveau lead vient d'être synchronisé depuis Qhare.\n\n"+
			"Nom : %s %s\nEmail : %s\nTéléphone : %s\nVille : %s (%s)\nID Qhare : %s\n",
		lead.Prenom, lead.Nom, lead.Email, lead.Telephone, lead.Ville, lead.CodePostal,
		lead.EffectiveQhareID(),
	))

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("envoi SMTP échoué: %w", err)
	}

	return nil
}
