package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// EmailSender delivers one rendered message.
type EmailSender interface {
	Send(ctx context.Context, to string, content EmailContent) error
}

// NewEmailSender returns a SendGrid sender, or a log-only sender when no
// API key is configured.
func NewEmailSender(cfg *config.Config) EmailSender {
	if cfg.SendGridAPIKey == "" {
		utils.Logger.Warn("SENDGRID_API_KEY not set; emails will only be logged")
		return logEmailSender{}
	}
	return &sendgridEmailSender{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:    mail.NewEmail(cfg.OrganizationName, cfg.SendGridFromEmail),
		sandbox: cfg.LDFlag_SendgridSandboxMode,
	}
}

type sendgridEmailSender struct {
	client  *sendgrid.Client
	from    *mail.Email
	sandbox bool
}

func (s *sendgridEmailSender) Send(ctx context.Context, to string, content EmailContent) error {
	msg := mail.NewSingleEmail(s.from, content.Subject, mail.NewEmail("", to), content.Plain, content.HTML)
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid returned %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}
	return nil
}

type logEmailSender struct{}

func (logEmailSender) Send(_ context.Context, to string, content EmailContent) error {
	utils.Logger.WithField("to", to).Infof("Email (not sent): %s", content.Subject)
	return nil
}
