package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"dresscutur/backend/internal/domain"
)

type emailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Inbox receives the atelier's copy of bookings and contact messages.
	Inbox    string
	Location *time.Location
}

type Email struct {
	client emailSender
	cfg    EmailConfig
	log    *slog.Logger
}

func NewEmail(cfg EmailConfig, log *slog.Logger) *Email {
	return newEmail(sendgrid.NewSendClient(cfg.APIKey), cfg, log)
}

func newEmail(client emailSender, cfg EmailConfig, log *slog.Logger) *Email {
	if log == nil {
		log = slog.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "DressCutur"
	}
	return &Email{
		client: client,
		cfg:    cfg,
		log:    log.With(slog.String("component", "notify.sendgrid")),
	}
}

func (e *Email) BookingReceived(ctx context.Context, ev domain.Event) error {
	if ev.ClientEmail != "" {
		subject := "Your DressCutur appointment request"
		if err := e.send(ctx, ev.ClientEmail, ev.ClientName, subject, bookingClientText(ev, e.cfg.Location), ""); err != nil {
			return err
		}
	}
	if e.cfg.Inbox != "" {
		subject := "New booking: " + ev.ClientName
		return e.send(ctx, e.cfg.Inbox, "DressCutur", subject, bookingAtelierText(ev, e.cfg.Location), ev.ClientEmail)
	}
	return nil
}

func (e *Email) ContactReceived(ctx context.Context, msg domain.ContactMessage) error {
	if e.cfg.Inbox == "" {
		return nil
	}
	subject := "Contact form: " + msg.Subject
	if msg.Subject == "" {
		subject = "Contact form: " + msg.Name
	}
	return e.send(ctx, e.cfg.Inbox, "DressCutur", subject, contactAtelierText(msg), msg.Email)
}

func (e *Email) send(ctx context.Context, toEmail, toName, subject, text, replyTo string) error {
	from := mail.NewEmail(e.cfg.FromName, e.cfg.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewV3MailInit(from, subject, to, mail.NewContent("text/plain", text))
	if replyTo != "" {
		message.SetReplyTo(mail.NewEmail("", replyTo))
	}

	resp, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	e.log.Debug("email sent", slog.String("subject", subject), slog.Int("status", resp.StatusCode))
	return nil
}
