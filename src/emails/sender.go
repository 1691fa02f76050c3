package emails

import (
	"gopkg.in/gomail.v2"

	"github.com/unlinked-app/unlinked-backend/src/config"
)

// Sender delivers outbound email. Delivery is best effort everywhere this is
// used: callers log failures and carry on.
type Sender interface {
	SendWelcome(to, name, profileURL string) error
	SendConnectionAccepted(to, senderName, recipientName, profileURL string) error
	SendCommentNotification(to, recipientName, commenterName, postURL, comment string) error
	SendPasswordReset(to, name, resetURL string) error
}

// SMTPSender sends email through an SMTP relay using gomail
type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPassword)
	return d.DialAndSend(m)
}

func (s *SMTPSender) SendWelcome(to, name, profileURL string) error {
	return s.send(to, "Welcome to UnLinked!", welcomeEmailTemplate(name, profileURL))
}

func (s *SMTPSender) SendConnectionAccepted(to, senderName, recipientName, profileURL string) error {
	subject := recipientName + " accepted your connection request"
	return s.send(to, subject, connectionAcceptedEmailTemplate(senderName, recipientName, profileURL))
}

func (s *SMTPSender) SendCommentNotification(to, recipientName, commenterName, postURL, comment string) error {
	return s.send(to, "New Comment on Your Post", commentNotificationEmailTemplate(recipientName, commenterName, postURL, comment))
}

func (s *SMTPSender) SendPasswordReset(to, name, resetURL string) error {
	return s.send(to, "Reset Your UnLinked Password", passwordResetEmailTemplate(name, resetURL))
}
