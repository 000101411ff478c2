package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dresscutur/backend/internal/domain"
)

type ContactRepo struct {
	db *bun.DB
}

func NewContactRepo(db *bun.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) Create(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	if _, err := r.db.NewInsert().Model(&msg).Exec(ctx); err != nil {
		return domain.ContactMessage{}, translateError(err)
	}
	return msg, nil
}

func (r *ContactRepo) List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error) {
	var rows []domain.ContactMessage
	q := r.db.NewSelect().Model(&rows)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if err := q.OrderExpr("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContactRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model((*domain.ContactMessage)(nil)).
		Set("read_at = COALESCE(read_at, ?)", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.ContactMessage)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
