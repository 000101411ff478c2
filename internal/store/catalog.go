package store

import (
	"context"

	"github.com/google/uuid"

	"dresscutur/backend/internal/domain"
)

// CatalogItem is any back-office record edited through plain CRUD.
type CatalogItem interface {
	domain.Service | domain.Fabric | domain.TeamMember
}

type CatalogRepository[T CatalogItem] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id uuid.UUID, item T) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContactRepository interface {
	Create(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.AdminUser, error)
	Create(ctx context.Context, admin domain.AdminUser) (domain.AdminUser, error)
}
