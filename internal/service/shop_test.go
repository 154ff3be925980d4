package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/community_gallery/internal/platform"
)

type mockShop struct{ mock.Mock }

func (m *mockShop) Connected(ctx context.Context) bool { return m.Called().Bool(0) }

func (m *mockShop) ListMetafields(ctx context.Context, productID string) ([]platform.Metafield, error) {
	args := m.Called(productID)
	out, _ := args.Get(0).([]platform.Metafield)
	return out, args.Error(1)
}

func (m *mockShop) CreateMetafield(ctx context.Context, productID string, mf platform.Metafield) (*platform.Metafield, error) {
	args := m.Called(productID, mf)
	out, _ := args.Get(0).(*platform.Metafield)
	return out, args.Error(1)
}

func (m *mockShop) UpdateMetafield(ctx context.Context, productID string, id int64, value, typ string) (*platform.Metafield, error) {
	args := m.Called(productID, id, value, typ)
	out, _ := args.Get(0).(*platform.Metafield)
	return out, args.Error(1)
}

func (m *mockShop) DeleteMetafield(ctx context.Context, productID string, id int64) error {
	return m.Called(productID, id).Error(0)
}

func (m *mockShop) SetMetafields(ctx context.Context, productID string, fields []platform.Metafield) ([]platform.Metafield, int, error) {
	args := m.Called(productID, fields)
	out, _ := args.Get(0).([]platform.Metafield)
	return out, args.Int(1), args.Error(2)
}

func (m *mockShop) GetListMetafield(ctx context.Context, productID, namespace, key string) (platform.ListResult, error) {
	args := m.Called(productID, namespace, key)
	return args.Get(0).(platform.ListResult), args.Error(1)
}

func (m *mockShop) StagedUpload(ctx context.Context, filename, mimeType, alt string, content []byte) (*platform.UploadedFile, error) {
	args := m.Called(filename, mimeType, alt)
	out, _ := args.Get(0).(*platform.UploadedFile)
	return out, args.Error(1)
}

func TestShop_ErrorMapping(t *testing.T) {
	m := &mockShop{}
	m.On("ListMetafields", "1").Return(nil, platform.ErrNoToken)
	m.On("ListMetafields", "2").Return(nil, &platform.APIError{Status: 404, Body: "Not Found"})
	m.On("ListMetafields", "3").Return(nil, &platform.APIError{Status: 500, Body: "oops"})
	svc := &ShopService{API: m}
	ctx := context.Background()

	_, err := svc.ListMetafields(ctx, "1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ListMetafields(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListMetafields(ctx, "3")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "oops")
}

func TestShop_SetMetafields(t *testing.T) {
	m := &mockShop{}
	svc := &ShopService{API: m}
	ctx := context.Background()

	_, _, err := svc.SetMetafields(ctx, "9", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, idx, err := svc.SetMetafields(ctx, "9", []platform.Metafield{{Namespace: "a", Key: "b"}, {Namespace: "", Key: "c"}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, idx)
	m.AssertNotCalled(t, "SetMetafields", mock.Anything, mock.Anything)

	fields := []platform.Metafield{{Namespace: "a", Key: "b", Value: "1"}, {Namespace: "a", Key: "c", Value: "2"}}
	m.On("SetMetafields", "9", fields).Return([]platform.Metafield{fields[0]}, 1, &platform.APIError{Status: 422, Body: "bad"})

	written, idx, err := svc.SetMetafields(ctx, "9", fields)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, idx)
	assert.Len(t, written, 1)
}

func TestShop_CreateRequiresType(t *testing.T) {
	m := &mockShop{}
	svc := &ShopService{API: m}

	_, err := svc.CreateMetafield(context.Background(), "9", platform.Metafield{Namespace: "a", Key: "b"})
	assert.ErrorIs(t, err, ErrValidation)
	m.AssertNotCalled(t, "CreateMetafield", mock.Anything, mock.Anything)
}

func TestShop_UploadSniffsMime(t *testing.T) {
	m := &mockShop{}
	m.On("StagedUpload", "upload.png", "image/png", "alt").Return(&platform.UploadedFile{ID: "gid://shopify/MediaImage/1"}, nil)
	svc := &ShopService{API: m}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	f, err := svc.Upload(context.Background(), "", "", "alt", png)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/MediaImage/1", f.ID)

	_, err = svc.Upload(context.Background(), "a.png", "", "", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestShop_ListMetafieldResult(t *testing.T) {
	m := &mockShop{}
	m.On("GetListMetafield", "9", "custom", "colors").Return(platform.ParseListValue("oops"), nil)
	svc := &ShopService{API: m}

	res, err := svc.GetListMetafield(context.Background(), "9", "custom", "colors")
	require.NoError(t, err)
	assert.Equal(t, platform.ListParseError, res.Status)
}
