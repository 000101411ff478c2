package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dresscutur/backend/internal/domain"
)

type ClosureRepo struct {
	db *bun.DB
}

func NewClosureRepo(db *bun.DB) *ClosureRepo {
	return &ClosureRepo{db: db}
}

func (r *ClosureRepo) Create(ctx context.Context, series domain.ClosureSeries) (domain.ClosureSeries, error) {
	if _, err := r.db.NewInsert().Model(&series).Exec(ctx); err != nil {
		return domain.ClosureSeries{}, translateError(err)
	}
	return series, nil
}

func (r *ClosureRepo) List(ctx context.Context) ([]domain.ClosureSeries, error) {
	var rows []domain.ClosureSeries
	if err := r.db.NewSelect().Model(&rows).OrderExpr("dtstart ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClosureRepo) ListStartingBefore(ctx context.Context, end time.Time) ([]domain.ClosureSeries, error) {
	return listClosuresStartingBefore(ctx, r.db, end)
}

func listClosuresStartingBefore(ctx context.Context, db bun.IDB, end time.Time) ([]domain.ClosureSeries, error) {
	var rows []domain.ClosureSeries
	err := db.NewSelect().
		Model(&rows).
		Where("dtstart < ?", end).
		OrderExpr("dtstart ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClosureRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.ClosureSeries)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
