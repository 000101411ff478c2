package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

// CatalogRepo serves the plain CRUD tables of the back-office.
type CatalogRepo[T store.CatalogItem] struct {
	db    *bun.DB
	order string
}

func NewServiceRepo(db *bun.DB) *CatalogRepo[domain.Service] {
	return &CatalogRepo[domain.Service]{db: db, order: "position ASC, name ASC"}
}

func NewFabricRepo(db *bun.DB) *CatalogRepo[domain.Fabric] {
	return &CatalogRepo[domain.Fabric]{db: db, order: "name ASC"}
}

func NewTeamRepo(db *bun.DB) *CatalogRepo[domain.TeamMember] {
	return &CatalogRepo[domain.TeamMember]{db: db, order: "position ASC, name ASC"}
}

func (r *CatalogRepo[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := r.db.NewSelect().Model(&rows).OrderExpr(r.order).Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CatalogRepo[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var item T
	err := r.db.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		var zero T
		return zero, translateError(err)
	}
	return item, nil
}

func (r *CatalogRepo[T]) Create(ctx context.Context, item T) (T, error) {
	if _, err := r.db.NewInsert().Model(&item).Exec(ctx); err != nil {
		var zero T
		return zero, translateError(err)
	}
	return item, nil
}

func (r *CatalogRepo[T]) Update(ctx context.Context, id uuid.UUID, item T) (T, error) {
	var zero T
	res, err := r.db.NewUpdate().
		Model(&item).
		ExcludeColumn("id", "created_at").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return zero, translateError(err)
	}
	if err := requireAffected(res); err != nil {
		return zero, err
	}
	return r.Get(ctx, id)
}

func (r *CatalogRepo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
