package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"dresscutur/backend/internal/domain"
)

type smsSender interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// AtelierNumber is texted when a booking arrives; optional.
	AtelierNumber string
	Location      *time.Location
}

type SMS struct {
	api smsSender
	cfg SMSConfig
	log *slog.Logger
}

func NewSMS(cfg SMSConfig, log *slog.Logger) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.AccountSID,
		Password:   cfg.AuthToken,
		AccountSid: cfg.AccountSID,
	})
	return newSMS(client.Api, cfg, log)
}

func newSMS(api smsSender, cfg SMSConfig, log *slog.Logger) *SMS {
	if log == nil {
		log = slog.Default()
	}
	return &SMS{api: api, cfg: cfg, log: log.With(slog.String("component", "notify.twilio"))}
}

func (s *SMS) BookingReceived(ctx context.Context, ev domain.Event) error {
	if ev.ClientPhone != "" {
		body := fmt.Sprintf("DressCutur: we received your request for %s. We will confirm shortly.", describeSlot(ev, s.cfg.Location))
		if err := s.send(ctx, ev.ClientPhone, body); err != nil {
			return err
		}
	}
	if s.cfg.AtelierNumber != "" {
		body := fmt.Sprintf("New booking: %s, %s (%s)", ev.ClientName, describeSlot(ev, s.cfg.Location), ev.Category)
		return s.send(ctx, s.cfg.AtelierNumber, body)
	}
	return nil
}

// ContactReceived is email-only.
func (s *SMS) ContactReceived(context.Context, domain.ContactMessage) error {
	return nil
}

func (s *SMS) send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(to, "+") {
		s.log.Warn("phone number not in E.164 format", slog.String("to", to))
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.cfg.FromNumber)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.log.Debug("sms sent", slog.String("sid", *resp.Sid))
	}
	return nil
}
