package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service is one of the atelier's offerings (alterations, bespoke, bridal...).
// Slug doubles as the booking category.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Slug            string    `bun:"slug,notnull,unique"`
	Name            string    `bun:"name,notnull"`
	Description     string    `bun:"description"`
	PriceCents      int64     `bun:"price_cents,notnull"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	Active          bool      `bun:"active,notnull"`
	Position        int       `bun:"position,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &s.ID, &s.CreatedAt, &s.UpdatedAt)
}

type Fabric struct {
	bun.BaseModel `bun:"table:fabrics"`

	ID                 uuid.UUID `bun:"id,pk,type:uuid"`
	Name               string    `bun:"name,notnull"`
	Composition        string    `bun:"composition"`
	Color              string    `bun:"color"`
	PricePerMeterCents int64     `bun:"price_per_meter_cents,notnull"`
	InStock            bool      `bun:"in_stock,notnull"`
	ImageURL           string    `bun:"image_url"`
	CreatedAt          time.Time `bun:"created_at,notnull"`
	UpdatedAt          time.Time `bun:"updated_at,notnull"`
}

func (f *Fabric) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &f.ID, &f.CreatedAt, &f.UpdatedAt)
}

type TeamMember struct {
	bun.BaseModel `bun:"table:team_members"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Role      string    `bun:"role,notnull"`
	Bio       string    `bun:"bio"`
	PhotoURL  string    `bun:"photo_url"`
	Position  int       `bun:"position,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m *TeamMember) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &m.ID, &m.CreatedAt, &m.UpdatedAt)
}
