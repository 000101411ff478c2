package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ContactMessage struct {
	bun.BaseModel `bun:"table:contact_messages"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	Name      string     `bun:"name,notnull"`
	Email     string     `bun:"email,notnull"`
	Phone     string     `bun:"phone"`
	Subject   string     `bun:"subject"`
	Message   string     `bun:"message,notnull"`
	ReadAt    *time.Time `bun:"read_at"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`
}

func (m *ContactMessage) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &m.ID, &m.CreatedAt, &m.UpdatedAt)
}

type AdminUser struct {
	bun.BaseModel `bun:"table:admin_users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (a *AdminUser) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	return stamp(query, &a.ID, &a.CreatedAt, &a.UpdatedAt)
}
