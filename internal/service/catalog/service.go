package catalog

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

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
	services store.CatalogRepository[domain.Service]
	fabrics  store.CatalogRepository[domain.Fabric]
	team     store.CatalogRepository[domain.TeamMember]
}

func NewService(
	services store.CatalogRepository[domain.Service],
	fabrics store.CatalogRepository[domain.Fabric],
	team store.CatalogRepository[domain.TeamMember],
) *Service {
	return &Service{services: services, fabrics: fabrics, team: team}
}

// ListServices returns the offerings; the public site only sees active ones.
func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	rows, err := s.services.List(ctx)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return rows, nil
	}
	out := rows[:0]
	for _, r := range rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	if id == uuid.Nil {
		return domain.Service{}, validationError("id is required")
	}
	return s.services.Get(ctx, id)
}

func (s *Service) CreateService(ctx context.Context, in domain.Service) (domain.Service, error) {
	svc, err := normalizeService(in)
	if err != nil {
		return domain.Service{}, err
	}
	svc.ID = uuid.Nil
	return s.services.Create(ctx, svc)
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, in domain.Service) (domain.Service, error) {
	if id == uuid.Nil {
		return domain.Service{}, validationError("id is required")
	}
	svc, err := normalizeService(in)
	if err != nil {
		return domain.Service{}, err
	}
	return s.services.Update(ctx, id, svc)
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.services.Delete(ctx, id)
}

func normalizeService(in domain.Service) (domain.Service, error) {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return domain.Service{}, validationError("name is required")
	}
	if !slugPattern.MatchString(in.Slug) {
		return domain.Service{}, validationError("slug must be lowercase words separated by dashes")
	}
	if in.PriceCents < 0 {
		return domain.Service{}, validationError("price must not be negative")
	}
	if in.DurationMinutes <= 0 {
		return domain.Service{}, validationError("duration_minutes must be positive")
	}
	if in.Position < 0 {
		return domain.Service{}, validationError("position must not be negative")
	}
	return in, nil
}

func (s *Service) ListFabrics(ctx context.Context) ([]domain.Fabric, error) {
	return s.fabrics.List(ctx)
}

func (s *Service) GetFabric(ctx context.Context, id uuid.UUID) (domain.Fabric, error) {
	if id == uuid.Nil {
		return domain.Fabric{}, validationError("id is required")
	}
	return s.fabrics.Get(ctx, id)
}

func (s *Service) CreateFabric(ctx context.Context, in domain.Fabric) (domain.Fabric, error) {
	f, err := normalizeFabric(in)
	if err != nil {
		return domain.Fabric{}, err
	}
	f.ID = uuid.Nil
	return s.fabrics.Create(ctx, f)
}

func (s *Service) UpdateFabric(ctx context.Context, id uuid.UUID, in domain.Fabric) (domain.Fabric, error) {
	if id == uuid.Nil {
		return domain.Fabric{}, validationError("id is required")
	}
	f, err := normalizeFabric(in)
	if err != nil {
		return domain.Fabric{}, err
	}
	return s.fabrics.Update(ctx, id, f)
}

func (s *Service) DeleteFabric(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.fabrics.Delete(ctx, id)
}

func normalizeFabric(in domain.Fabric) (domain.Fabric, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Composition = strings.TrimSpace(in.Composition)
	in.Color = strings.TrimSpace(in.Color)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Name == "" {
		return domain.Fabric{}, validationError("name is required")
	}
	if in.PricePerMeterCents < 0 {
		return domain.Fabric{}, validationError("price must not be negative")
	}
	if err := checkURL(in.ImageURL, "image_url"); err != nil {
		return domain.Fabric{}, err
	}
	return in, nil
}

func (s *Service) ListTeam(ctx context.Context) ([]domain.TeamMember, error) {
	return s.team.List(ctx)
}

func (s *Service) GetTeamMember(ctx context.Context, id uuid.UUID) (domain.TeamMember, error) {
	if id == uuid.Nil {
		return domain.TeamMember{}, validationError("id is required")
	}
	return s.team.Get(ctx, id)
}

func (s *Service) CreateTeamMember(ctx context.Context, in domain.TeamMember) (domain.TeamMember, error) {
	m, err := normalizeTeamMember(in)
	if err != nil {
		return domain.TeamMember{}, err
	}
	m.ID = uuid.Nil
	return s.team.Create(ctx, m)
}

func (s *Service) UpdateTeamMember(ctx context.Context, id uuid.UUID, in domain.TeamMember) (domain.TeamMember, error) {
	if id == uuid.Nil {
		return domain.TeamMember{}, validationError("id is required")
	}
	m, err := normalizeTeamMember(in)
	if err != nil {
		return domain.TeamMember{}, err
	}
	return s.team.Update(ctx, id, m)
}

func (s *Service) DeleteTeamMember(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.team.Delete(ctx, id)
}

func normalizeTeamMember(in domain.TeamMember) (domain.TeamMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Bio = strings.TrimSpace(in.Bio)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	if in.Name == "" {
		return domain.TeamMember{}, validationError("name is required")
	}
	if in.Role == "" {
		return domain.TeamMember{}, validationError("role is required")
	}
	if in.Position < 0 {
		return domain.TeamMember{}, validationError("position must not be negative")
	}
	if err := checkURL(in.PhotoURL, "photo_url"); err != nil {
		return domain.TeamMember{}, err
	}
	return in, nil
}

func checkURL(raw, field string) error {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "/") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validationError(field + " must be an absolute http(s) URL or a site path")
	}
	return nil
}
