package postgres

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"dresscutur/backend/internal/domain"
)

type AdminRepo struct {
	db *bun.DB
}

func NewAdminRepo(db *bun.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	var admin domain.AdminUser
	err := r.db.NewSelect().
		Model(&admin).
		Where("lower(email) = ?", strings.ToLower(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.AdminUser{}, translateError(err)
	}
	return admin, nil
}

func (r *AdminRepo) Create(ctx context.Context, admin domain.AdminUser) (domain.AdminUser, error) {
	if _, err := r.db.NewInsert().Model(&admin).Exec(ctx); err != nil {
		return domain.AdminUser{}, translateError(err)
	}
	return admin, nil
}
