package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

const minPasswordLen = 10

var ErrInvalidCredentials = errors.New("invalid email or password")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo store.AdminRepository
	cost int
	// dummy is compared against when the email is unknown so both paths cost
	// one bcrypt comparison.
	dummy []byte
}

func NewService(repo store.AdminRepository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dresscutur-dummy-password"), cost)
	return &Service{repo: repo, cost: cost, dummy: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.AdminUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.AdminUser{}, ErrInvalidCredentials
	}

	admin, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return domain.AdminUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.AdminUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return domain.AdminUser{}, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *Service) CreateAdmin(ctx context.Context, email, password string) (domain.AdminUser, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.AdminUser{}, validationError("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return domain.AdminUser{}, validationError("password must be at least 10 characters")
	}
	if len(password) > 72 {
		return domain.AdminUser{}, validationError("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.AdminUser{}, err
	}
	return s.repo.Create(ctx, domain.AdminUser{Email: email, PasswordHash: string(hash)})
}
