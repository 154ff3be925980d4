package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/mediahost"
	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/mykafka"
	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/internal/transport"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

type MediaService struct {
	Repo     *repo.GormRepo
	Verifier OwnershipVerifier
	Uploader MediaUploader
	Products ProductSource
	Signer   ownership.Signer
	Events   mykafka.Publisher
	Topic    string
	Folder   string
}

type SubmitInput struct {
	Ownership ownership.Request
	Data      []byte
	Filter    string
}

// Verify runs the purchase check. A malformed request or bad signature is an
// error; an unverified purchase is not.
func (s *MediaService) Verify(ctx context.Context, req ownership.Request) (ownership.Result, error) {
	res, err := s.Verifier.Verify(ctx, req)
	if err != nil {
		return ownership.Result{}, ownershipErr(err)
	}
	return res, nil
}

// Submit verifies the purchase, uploads the file and stores a pending media
// record. Nothing is persisted unless every earlier step succeeded.
func (s *MediaService) Submit(ctx context.Context, in SubmitInput) (*models.Media, error) {
	l := logging.FromContext(ctx).With("svc", "media.submit", "product_id", in.Ownership.ProductID)

	if strings.TrimSpace(in.Ownership.CustomerID) == "" && strings.TrimSpace(in.Ownership.OrderID) == "" {
		return nil, fmt.Errorf("%w: customerId or orderId required", ErrUnauthenticated)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: file required", ErrValidation)
	}

	res, err := s.Verify(ctx, in.Ownership)
	if err != nil {
		return nil, err
	}
	if !res.Verified {
		if res.Error != "" {
			return nil, fmt.Errorf("%w: ownership could not be verified: %s", ErrForbidden, res.Error)
		}
		return nil, fmt.Errorf("%w: product not purchased", ErrForbidden)
	}

	productID := platform.LegacyID(in.Ownership.ProductID)
	uploaded, err := s.Uploader.Upload(ctx, in.Data, mediahost.Options{
		Folder:       s.Folder,
		ResourceType: mediahost.ResourceAuto,
		Filter:       in.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	product := s.resolveProduct(ctx, productID)
	customer, err := s.resolveCustomer(ctx, res)
	if err != nil {
		return nil, err
	}

	m := &models.Media{
		PublicID:         uploaded.PublicID,
		URL:              uploaded.URL,
		Type:             mediaType(uploaded.ResourceType),
		ShopifyProductID: productID,
		Approved:         false,
	}
	if product != nil {
		m.ProductID = &product.ID
	}
	if customer != nil {
		m.CustomerID = &customer.ID
	}
	if err := s.Repo.CreateMedia(ctx, m); err != nil {
		return nil, err
	}
	l.Info("media_submitted", "media_id", m.ID, "public_id", m.PublicID)

	publish(ctx, s.Events, s.Topic, fmt.Sprint(m.ID), EventMediaSubmitted, map[string]any{
		"mediaId":   m.ID,
		"productId": productID,
		"url":       m.URL,
		"orderId":   res.OrderID,
	})
	return m, nil
}

// resolveProduct finds or lazily creates the product row. Failures leave the
// media without a product reference.
func (s *MediaService) resolveProduct(ctx context.Context, productID string) *models.Product {
	l := logging.FromContext(ctx).With("svc", "media.resolve_product", "product_id", productID)

	p, err := s.Repo.FindProductByShopifyID(ctx, productID)
	if err == nil {
		return p
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("product_lookup_failed", "error", err)
		return nil
	}
	if s.Products == nil {
		return nil
	}

	remote, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		l.Warn("product_fetch_failed", "error", err)
		return nil
	}
	name := strings.TrimSpace(remote.Title)
	if name == "" {
		name = "Product " + productID
	}
	p, err = s.Repo.CreateProduct(ctx, &models.Product{ShopifyID: productID, Name: name})
	if err != nil {
		l.Warn("product_create_failed", "error", err)
		return nil
	}
	return p
}

// resolveCustomer prefers the customer of the locally stored verified order
// and falls back to the platform customer id.
func (s *MediaService) resolveCustomer(ctx context.Context, res ownership.Result) (*models.Customer, error) {
	if res.OrderID != "" {
		o, err := s.Repo.FindOrderByShopifyID(ctx, res.OrderID)
		switch {
		case err == nil && o.Customer != nil:
			return o.Customer, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	if res.CustomerID == "" {
		return nil, nil
	}
	c, err := s.Repo.FindCustomerByShopifyID(ctx, res.CustomerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return c, err
}

func mediaType(resourceType string) models.MediaType {
	if resourceType == mediahost.ResourceVideo {
		return models.MediaVideo
	}
	return models.MediaImage
}

// Gallery lists the approved media of a product for a verified purchaser.
func (s *MediaService) Gallery(ctx context.Context, req ownership.Request) (transport.GalleryResponse, error) {
	res, err := s.Verify(ctx, req)
	if err != nil {
		return transport.GalleryResponse{}, err
	}
	if !res.Verified {
		return transport.GalleryResponse{Authorized: false, Media: []transport.MediaView{}},
			fmt.Errorf("%w: product not purchased", ErrForbidden)
	}

	views, err := s.ApprovedMedia(ctx, req.ProductID)
	if err != nil {
		return transport.GalleryResponse{}, err
	}

	customer, err := s.resolveCustomer(ctx, res)
	if err != nil {
		return transport.GalleryResponse{}, err
	}
	if customer != nil && len(views) > 0 {
		ids := make([]uint, 0, len(views))
		for _, v := range views {
			ids = append(ids, v.ID)
		}
		liked, err := s.Repo.LikedBy(ctx, customer.ID, ids)
		if err != nil {
			return transport.GalleryResponse{}, err
		}
		for i := range views {
			views[i].Liked = liked[views[i].ID]
		}
	}
	return transport.GalleryResponse{Authorized: true, Media: views}, nil
}

// ApprovedMedia returns approved media of a product with their like counts.
func (s *MediaService) ApprovedMedia(ctx context.Context, productID string) ([]transport.MediaView, error) {
	productID = platform.LegacyID(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId required", ErrValidation)
	}
	items, err := s.Repo.ApprovedMediaForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.withLikes(ctx, items)
}

func (s *MediaService) withLikes(ctx context.Context, items []models.Media) ([]transport.MediaView, error) {
	ids := make([]uint, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	counts, err := s.Repo.LikeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]transport.MediaView, 0, len(items))
	for _, m := range items {
		views = append(views, transport.NewMediaView(m, counts[m.ID]))
	}
	return views, nil
}

// ToggleLike likes or unlikes an approved media item on behalf of a known
// customer.
func (s *MediaService) ToggleLike(ctx context.Context, mediaID uint, customerShopifyID, signature string) (transport.LikeResponse, error) {
	customerShopifyID = platform.LegacyID(customerShopifyID)
	if customerShopifyID == "" {
		return transport.LikeResponse{}, fmt.Errorf("%w: customerId required", ErrUnauthenticated)
	}
	if err := s.Signer.Check(customerShopifyID, signature); err != nil {
		return transport.LikeResponse{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	m, err := s.Repo.GetMedia(ctx, mediaID)
	if err != nil {
		return transport.LikeResponse{}, notFound(err, "media")
	}
	if !m.Approved {
		return transport.LikeResponse{}, fmt.Errorf("%w: media", ErrNotFound)
	}
	c, err := s.Repo.FindCustomerByShopifyID(ctx, customerShopifyID)
	if err != nil {
		return transport.LikeResponse{}, notFound(err, "customer")
	}

	liked, count, err := s.Repo.ToggleLike(ctx, c.ID, m.ID)
	if err != nil {
		return transport.LikeResponse{}, err
	}
	return transport.LikeResponse{MediaID: m.ID, Liked: liked, LikeCount: count}, nil
}
