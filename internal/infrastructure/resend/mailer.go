package resend

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/linkedcreds-api/internal/config"
	"github.com/resend/resend-go/v2"
)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer sends HTML emails through the Resend API.
type Mailer struct {
	emails emailSender
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	client := resend.NewClient(cfg.ResendAPIKey)
	from := mail.Address{Name: cfg.AppName, Address: cfg.MailFrom}
	return &Mailer{emails: client.Emails, from: from.String()}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, html string) error {
	_, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
