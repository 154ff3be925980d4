package httpserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/transport"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestUploadAndAssign_WithoutIdentifiers(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"productId":  "9",
		"fileBase64": base64.StdEncoding.EncodeToString(pngBytes),
	}
	_, _, c := env.doJSONRequest(http.MethodPost, "/shopify/upload-and-assign", body)
	err := env.Deps.MediaHandler.UploadAndAssign(c)
	requireHTTPError(t, err, http.StatusUnauthorized)

	assert.Zero(t, env.Uploader.calls)
	assert.Zero(t, env.Orders.calls)
	var n int64
	require.NoError(t, env.DB.Model(&models.Media{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUploadAndAssign_Multipart(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("customerId", "55"))
	require.NoError(t, w.WriteField("productId", "9"))
	require.NoError(t, w.WriteField("filter", "sepia"))
	fw, err := w.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/shopify/upload-and-assign", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)

	require.NoError(t, env.Deps.MediaHandler.UploadAndAssign(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.SubmitMediaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example.com/community/abc.png", resp.URL)
	assert.False(t, resp.Media.Approved)
	assert.Equal(t, "9", resp.Media.ShopifyProductID)
	assert.Equal(t, 1, env.Uploader.calls)

	var stored models.Media
	require.NoError(t, env.DB.Preload("Product").First(&stored).Error)
	assert.False(t, stored.Approved)
	require.NotNil(t, stored.Product)
	assert.Equal(t, "Tee", stored.Product.Name)
}

func TestUploadAndAssign_GlobalCustomerIDLinksLocalCustomer(t *testing.T) {
	env := newTestEnv(t)
	customer := models.Customer{ShopifyID: "55", Email: "c@example.com"}
	require.NoError(t, env.DB.Create(&customer).Error)

	body := map[string]any{
		"customerId": "gid://shopify/Customer/55",
		"productId":  "9",
		"fileBase64": base64.StdEncoding.EncodeToString(pngBytes),
	}
	rec, _, c := env.doJSONRequest(http.MethodPost, "/shopify/upload-and-assign", body)
	require.NoError(t, env.Deps.MediaHandler.UploadAndAssign(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "55", env.Orders.customerID)

	var stored models.Media
	require.NoError(t, env.DB.First(&stored).Error)
	require.NotNil(t, stored.CustomerID)
	assert.Equal(t, customer.ID, *stored.CustomerID)
}

func TestUploadAndAssign_NotPurchased(t *testing.T) {
	env := newTestEnv(t)
	env.Orders.orderID = ""

	body := map[string]any{
		"customerId": 55,
		"productId":  9,
		"fileBase64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
	}
	_, _, c := env.doJSONRequest(http.MethodPost, "/shopify/upload-and-assign", body)
	requireHTTPError(t, env.Deps.MediaHandler.UploadAndAssign(c), http.StatusForbidden)
	assert.Zero(t, env.Uploader.calls)
}

func TestGallery_NoApprovedMedia(t *testing.T) {
	env := newTestEnv(t)
	env.createMedia(t, "9", false)

	rec, _, c := env.doJSONRequest(http.MethodGet, "/shopify/products/9/gallery?customerId=55", nil)
	c.SetParamNames("productId")
	c.SetParamValues("9")

	require.NoError(t, env.Deps.MediaHandler.Gallery(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authorized":true,"media":[]}`, rec.Body.String())
}

func TestGallery_NotPurchased(t *testing.T) {
	env := newTestEnv(t)
	env.Orders.orderID = ""

	_, _, c := env.doJSONRequest(http.MethodGet, "/shopify/products/9/gallery?customerId=55", nil)
	c.SetParamNames("productId")
	c.SetParamValues("9")

	requireHTTPError(t, env.Deps.MediaHandler.Gallery(c), http.StatusForbidden)
}

func TestVerifyOwnership(t *testing.T) {
	env := newTestEnv(t)

	rec, _, c := env.doJSONRequest(http.MethodGet, "/shopify/verify-ownership/9?customerId=55", nil)
	c.SetParamNames("productId")
	c.SetParamValues("9")

	require.NoError(t, env.Deps.MediaHandler.VerifyOwnership(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["verified"])
	assert.Equal(t, "1001", resp["orderId"])

	_, _, c = env.doJSONRequest(http.MethodGet, "/shopify/verify-ownership/9?customerId=55&orderId=1001", nil)
	c.SetParamNames("productId")
	c.SetParamValues("9")
	requireHTTPError(t, env.Deps.MediaHandler.VerifyOwnership(c), http.StatusBadRequest)
}

func TestProductMedia_ListsApprovedOnly(t *testing.T) {
	env := newTestEnv(t)
	approved := env.createMedia(t, "9", true)
	env.createMedia(t, "9", false)

	rec, _, c := env.doJSONRequest(http.MethodGet, "/shopify/products/9/media", nil)
	c.SetParamNames("productId")
	c.SetParamValues("9")

	require.NoError(t, env.Deps.MediaHandler.ProductMedia(c))
	var resp transport.MediaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Media, 1)
	assert.Equal(t, approved.ID, resp.Media[0].ID)
}

func TestLike_Toggles(t *testing.T) {
	env := newTestEnv(t)
	m := env.createMedia(t, "9", true)
	require.NoError(t, env.DB.Create(&models.Customer{ShopifyID: "55"}).Error)

	like := func() transport.LikeResponse {
		rec, _, c := env.doJSONRequest(http.MethodPost, "/shopify/media/1/like", map[string]any{"customerId": "55"})
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, env.Deps.MediaHandler.Like(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp transport.LikeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	first := like()
	assert.Equal(t, m.ID, first.MediaID)
	assert.True(t, first.Liked)
	assert.EqualValues(t, 1, first.LikeCount)

	second := like()
	assert.False(t, second.Liked)
	assert.EqualValues(t, 0, second.LikeCount)
}

func TestLike_Rejects(t *testing.T) {
	env := newTestEnv(t)
	env.createMedia(t, "9", false)

	tests := []struct {
		name string
		id   string
		body any
		code int
	}{
		{"bad id", "abc", map[string]any{"customerId": "55"}, http.StatusBadRequest},
		{"no customer id", "1", map[string]any{}, http.StatusUnauthorized},
		{"pending media", "1", map[string]any{"customerId": "55"}, http.StatusNotFound},
		{"missing media", "42", map[string]any{"customerId": "55"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, c := env.doJSONRequest(http.MethodPost, "/shopify/media/"+tt.id+"/like", tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			requireHTTPError(t, env.Deps.MediaHandler.Like(c), tt.code)
		})
	}
}

func TestDecodeBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, ct, err := decodeBase64(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Empty(t, ct)

	data, ct, err = decodeBase64("data:text/plain;base64," + raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", ct)

	_, _, err = decodeBase64("data:text/plain;base64")
	assert.Error(t, err)
	_, _, err = decodeBase64("!!!")
	assert.Error(t, err)
}
