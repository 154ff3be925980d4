package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/community_gallery/internal/es"
	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/mykafka"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/internal/util"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

const DateLayout = "2006-01-02"

type ModerationService struct {
	Repo   *repo.GormRepo
	Index  es.Indexer
	Events mykafka.Publisher
	Topic  string
}

type MediaPage struct {
	Items      []models.Media
	Total      int64
	Page       int
	Size       int
	TotalPages int64
}

// ParseFilter builds a listing filter from query values. Dates are calendar
// days in UTC; the range includes both the from and the to day.
func ParseFilter(status, from, to string) (repo.MediaFilter, error) {
	f := repo.MediaFilter{Status: repo.StatusAll}
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "", repo.StatusAll:
	case repo.StatusApproved, repo.StatusPending:
		f.Status = s
	default:
		return f, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(DateLayout, from, time.UTC)
		if err != nil {
			return f, fmt.Errorf("%w: from: %v", ErrValidation, err)
		}
		f.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(DateLayout, to, time.UTC)
		if err != nil {
			return f, fmt.Errorf("%w: to: %v", ErrValidation, err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, fmt.Errorf("%w: from is after to", ErrValidation)
	}
	return f, nil
}

func (s *ModerationService) List(ctx context.Context, f repo.MediaFilter, page, size int) (MediaPage, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListMedia(ctx, f, offset, limit)
	if err != nil {
		return MediaPage{}, err
	}
	if page < 1 {
		page = 1
	}
	return MediaPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       limit,
		TotalPages: util.TotalPages(total, limit),
	}, nil
}

// Toggle flips the approval flag. The search index follows the new state on a
// best-effort basis.
func (s *ModerationService) Toggle(ctx context.Context, id uint, adminEmail string) (*models.Media, error) {
	l := logging.FromContext(ctx).With("svc", "moderation.toggle", "media_id", id)

	m, err := s.Repo.ToggleApproval(ctx, id)
	if err != nil {
		return nil, notFound(err, "media")
	}
	l.Info("media_moderated", "approved", m.Approved, "admin", adminEmail)

	if s.Index != nil {
		if m.Approved {
			err = s.Index.IndexMedia(ctx, es.MediaDoc{
				ID:               m.ID,
				URL:              m.URL,
				Type:             string(m.Type),
				ShopifyProductID: m.ShopifyProductID,
				CustomerID:       m.CustomerID,
				CreatedAt:        m.CreatedAt,
			})
		} else {
			err = s.Index.DeleteMedia(ctx, m.ID)
		}
		if err != nil {
			l.Warn("search_index_failed", "error", err)
		}
	}

	publish(ctx, s.Events, s.Topic, fmt.Sprint(m.ID), EventMediaModerated, map[string]any{
		"mediaId":  m.ID,
		"approved": m.Approved,
		"admin":    adminEmail,
	})
	return m, nil
}
