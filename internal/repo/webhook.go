package repo

import (
	"context"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

func (r *GormRepo) CreateWebhookEvent(ctx context.Context, ev *models.WebhookEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}
