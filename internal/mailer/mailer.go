package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/primeo/api/internal/config"
	"github.com/primeo/api/internal/logger"
)

// Mailer sends transactional mail (vérification email, reset mot de passe).
// With no SMTP host configured it logs instead of sending, so development
// keeps working without a relay.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer { return &Mailer{cfg: cfg} }

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" {
		logger.Get().WithField("to", to).WithField("subject", subject).Info("SMTP non configuré, mail ignoré")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	dialer.SSL = m.cfg.Secure
	return dialer.DialAndSend(msg)
}

// SendVerification mails the email-verification link.
func (m *Mailer) SendVerification(to, token string) error {
	body := fmt.Sprintf(`<p>Bienvenue chez Primeo.</p>
<p>Pour vérifier votre adresse email, utilisez ce code&nbsp;: <strong>%s</strong></p>`, token)
	return m.send(to, "Vérification de votre adresse email", body)
}

// SendPasswordReset mails the password-reset token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf(`<p>Une réinitialisation de mot de passe a été demandée pour ce compte.</p>
<p>Code de réinitialisation&nbsp;: <strong>%s</strong> (valable 1 heure)</p>
<p>Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.</p>`, token)
	return m.send(to, "Réinitialisation de votre mot de passe", body)
}
