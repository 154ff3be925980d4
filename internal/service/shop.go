package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

// ShopAPI is the platform surface behind the /shopify pass-through routes.
type ShopAPI interface {
	Connected(ctx context.Context) bool
	ListMetafields(ctx context.Context, productID string) ([]platform.Metafield, error)
	CreateMetafield(ctx context.Context, productID string, mf platform.Metafield) (*platform.Metafield, error)
	UpdateMetafield(ctx context.Context, productID string, metafieldID int64, value, typ string) (*platform.Metafield, error)
	DeleteMetafield(ctx context.Context, productID string, metafieldID int64) error
	SetMetafields(ctx context.Context, productID string, fields []platform.Metafield) ([]platform.Metafield, int, error)
	GetListMetafield(ctx context.Context, productID, namespace, key string) (platform.ListResult, error)
	StagedUpload(ctx context.Context, filename, mimeType, alt string, content []byte) (*platform.UploadedFile, error)
}

type ShopService struct {
	API  ShopAPI
	Shop string
}

func (s *ShopService) Connected(ctx context.Context) bool {
	return s.API.Connected(ctx)
}

func (s *ShopService) ListMetafields(ctx context.Context, productID string) ([]platform.Metafield, error) {
	out, err := s.API.ListMetafields(ctx, productID)
	return out, platformErr(err)
}

func (s *ShopService) CreateMetafield(ctx context.Context, productID string, mf platform.Metafield) (*platform.Metafield, error) {
	if err := validateMetafield(mf, true); err != nil {
		return nil, err
	}
	out, err := s.API.CreateMetafield(ctx, productID, mf)
	return out, platformErr(err)
}

func (s *ShopService) UpdateMetafield(ctx context.Context, productID string, metafieldID int64, value, typ string) (*platform.Metafield, error) {
	if metafieldID <= 0 {
		return nil, fmt.Errorf("%w: metafield id", ErrValidation)
	}
	out, err := s.API.UpdateMetafield(ctx, productID, metafieldID, value, typ)
	return out, platformErr(err)
}

func (s *ShopService) DeleteMetafield(ctx context.Context, productID string, metafieldID int64) error {
	if metafieldID <= 0 {
		return fmt.Errorf("%w: metafield id", ErrValidation)
	}
	return platformErr(s.API.DeleteMetafield(ctx, productID, metafieldID))
}

// SetMetafields writes the batch in order and stops at the first failure.
// failedIndex is -1 when every entry was written.
func (s *ShopService) SetMetafields(ctx context.Context, productID string, fields []platform.Metafield) ([]platform.Metafield, int, error) {
	if len(fields) == 0 {
		return nil, -1, fmt.Errorf("%w: metafields required", ErrValidation)
	}
	for i, mf := range fields {
		if err := validateMetafield(mf, false); err != nil {
			return nil, i, fmt.Errorf("metafields[%d]: %w", i, err)
		}
	}
	written, failedIndex, err := s.API.SetMetafields(ctx, productID, fields)
	if err != nil {
		logging.FromContext(ctx).Warn("metafield_batch_aborted", "product_id", productID, "failed_index", failedIndex, "error", err)
	}
	return written, failedIndex, platformErr(err)
}

func (s *ShopService) GetListMetafield(ctx context.Context, productID, namespace, key string) (platform.ListResult, error) {
	res, err := s.API.GetListMetafield(ctx, productID, namespace, key)
	if err != nil {
		return platform.ListResult{}, platformErr(err)
	}
	if res.Status == platform.ListParseError {
		logging.FromContext(ctx).Warn("metafield_parse_error", "product_id", productID, "namespace", namespace, "key", key, "error", res.Err)
	}
	return res, nil
}

// Upload pushes a file through the platform's staged upload flow. The MIME
// type is sniffed from the content when not given.
func (s *ShopService) Upload(ctx context.Context, filename, mimeType, alt string, data []byte) (*platform.UploadedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file required", ErrValidation)
	}
	mt := mimetype.Detect(data)
	if strings.TrimSpace(mimeType) == "" {
		mimeType = mt.String()
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if strings.TrimSpace(filename) == "" {
		filename = "upload" + mt.Extension()
	}
	file, err := s.API.StagedUpload(ctx, filename, mimeType, alt, data)
	return file, platformErr(err)
}

func validateMetafield(mf platform.Metafield, requireType bool) error {
	if strings.TrimSpace(mf.Namespace) == "" || strings.TrimSpace(mf.Key) == "" {
		return fmt.Errorf("%w: namespace and key required", ErrValidation)
	}
	if requireType && strings.TrimSpace(mf.Type) == "" {
		return fmt.Errorf("%w: type required", ErrValidation)
	}
	return nil
}
