package contacts

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

const maxMessageLen = 5000

const notifyTimeout = 30 * time.Second

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Notifier interface {
	ContactReceived(ctx context.Context, msg domain.ContactMessage) error
}

type Service struct {
	repo     store.ContactRepository
	notifier Notifier
	log      *slog.Logger

	notifications sync.WaitGroup
}

func NewService(repo store.ContactRepository, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log.With(slog.String("component", "service.contacts")),
	}
}

type SubmitInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (domain.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.ContactMessage{}, validationError("name is required")
	}
	email := strings.TrimSpace(in.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.ContactMessage{}, validationError("a valid email is required")
	}
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return domain.ContactMessage{}, validationError("message is required")
	}
	if len(body) > maxMessageLen {
		return domain.ContactMessage{}, validationError("message too long")
	}

	msg, err := s.repo.Create(ctx, domain.ContactMessage{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: body,
	})
	if err != nil {
		return domain.ContactMessage{}, err
	}

	s.log.Info("contact message received", slog.String("message_id", msg.ID.String()))
	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		s.notifications.Add(1)
		go func() {
			defer s.notifications.Done()
			defer cancel()
			if err := s.notifier.ContactReceived(nctx, msg); err != nil {
				s.log.Warn("contact notification failed", slog.Any("err", err), slog.String("message_id", msg.ID.String()))
			}
		}()
	}
	return msg, nil
}

// Wait blocks until notifications already started have finished.
func (s *Service) Wait() {
	s.notifications.Wait()
}

func (s *Service) List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error) {
	return s.repo.List(ctx, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.repo.Delete(ctx, id)
}
