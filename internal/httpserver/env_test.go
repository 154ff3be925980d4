package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/mediahost"
	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/internal/service"
)

var testJWTSecret = []byte("test-jwt-secret")

type fakeOrders struct {
	orderID    string
	err        error
	calls      int
	customerID string
}

func (f *fakeOrders) FindCustomerOrderWithProduct(_ context.Context, customerID, productID string) (string, error) {
	f.calls++
	f.customerID = customerID
	return f.orderID, f.err
}

func (f *fakeOrders) GetOrder(_ context.Context, orderID string) (*platform.Order, error) {
	f.calls++
	return nil, &platform.APIError{Status: http.StatusNotFound, Body: "Not Found"}
}

type fakeUploader struct {
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, opts mediahost.Options) (*mediahost.Result, error) {
	f.calls++
	return &mediahost.Result{
		URL:          "https://cdn.example.com/community/abc.png",
		PublicID:     "community/abc",
		ResourceType: mediahost.ResourceImage,
	}, nil
}

type fakeProducts struct{}

func (fakeProducts) GetProduct(_ context.Context, productID string) (*platform.Product, error) {
	return &platform.Product{Title: "Tee"}, nil
}

type testEnv struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	E        *echo.Echo
	Orders   *fakeOrders
	Uploader *fakeUploader
	Deps     *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repo.Migrate(db))

	r := &repo.GormRepo{DB: db}
	orders := &fakeOrders{orderID: "1001"}
	uploader := &fakeUploader{}
	signer := ownership.NewSigner("")

	templates := NewTemplateCache()
	require.NoError(t, templates.Load(nil))
	e := echo.New()
	e.Renderer = templates

	admin := &service.AdminService{Repo: r, JWTSecret: testJWTSecret, SessionTTL: time.Hour}
	deps := &Deps{
		DB: db,
		MediaHandler: &MediaHTTP{Svc: &service.MediaService{
			Repo:     r,
			Verifier: ownership.NewVerifier(orders, signer),
			Uploader: uploader,
			Products: fakeProducts{},
			Signer:   signer,
		}},
		ShopHandler: &ShopHTTP{Svc: &service.ShopService{
			API:  platform.NewClient("demo.myshopify.com", "2024-10", platform.NewMemoryTokenStore()),
			Shop: "demo.myshopify.com",
		}},
		OAuthHandler:   &OAuthHTTP{OAuth: &platform.OAuth{Tokens: platform.NewMemoryTokenStore()}},
		WebhookHandler: &WebhookHTTP{Svc: &service.WebhookService{Repo: r}},
		AdminHandler: &AdminHTTP{
			Admin:        admin,
			Moderation:   &service.ModerationService{Repo: r},
			SessionStore: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		},
		JWTSecret: testJWTSecret,
	}

	return &testEnv{DB: db, Repo: r, E: e, Orders: orders, Uploader: uploader, Deps: deps}
}

// doJSONRequest builds a request and an echo context for calling a handler
// directly. A string body is sent as is, anything else is JSON encoded.
func (env *testEnv) doJSONRequest(method, target string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Request, echo.Context) {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		rd = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, req, env.E.NewContext(req, rec)
}

func (env *testEnv) doFormRequest(method, target, form string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) createMedia(t *testing.T, productID string, approved bool) models.Media {
	t.Helper()
	m := models.Media{
		PublicID:         "community/" + productID,
		URL:              "https://cdn.example.com/community/" + productID + ".png",
		Type:             models.MediaImage,
		ShopifyProductID: productID,
		Approved:         approved,
	}
	require.NoError(t, env.DB.Create(&m).Error)
	return m
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}
