package repo

import (
	"context"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

// adminBootstrapLockKey is an arbitrary application-wide advisory lock id.
const adminBootstrapLockKey = 7310420001

// LockAdminBootstrap serialises first-admin creation until the surrounding
// transaction ends. Counting zero rows locks nothing, so a row lock cannot
// guard the insert. SQLite already serialises writers.
func (r *GormRepo) LockAdminBootstrap(ctx context.Context) error {
	if r.DB.Dialector.Name() != "postgres" {
		return nil
	}
	return r.DB.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", adminBootstrapLockKey).Error
}

func (r *GormRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) CreateAdmin(ctx context.Context, a *models.AdminUser) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) FindAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
