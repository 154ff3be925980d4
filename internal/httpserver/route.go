package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/community_gallery/pkg/db"
	middleware "github.com/Skotchmaster/community_gallery/pkg/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	MediaHandler   *MediaHTTP
	ShopHandler    *ShopHTTP
	OAuthHandler   *OAuthHTTP
	WebhookHandler *WebhookHTTP
	AdminHandler   *AdminHTTP
	JWTSecret      []byte
	CookieSecure   bool
	// CSRF guards the admin form routes; nil disables it.
	CSRF echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return c.NoContent(http.StatusOK)
	})

	shopify := e.Group("/shopify")
	shopify.GET("/auth", d.OAuthHandler.Begin)
	shopify.GET("/callback", d.OAuthHandler.Callback)
	shopify.GET("/status", d.ShopHandler.Status)
	shopify.POST("/upload", d.ShopHandler.Upload)
	shopify.POST("/upload-and-assign", d.MediaHandler.UploadAndAssign)
	shopify.GET("/verify-ownership/:productId", d.MediaHandler.VerifyOwnership)
	shopify.POST("/media/:id/like", d.MediaHandler.Like)

	products := shopify.Group("/products/:productId")
	products.GET("/gallery", d.MediaHandler.Gallery)
	products.GET("/media", d.MediaHandler.ProductMedia)
	products.GET("/metafields", d.ShopHandler.ListMetafields)
	products.POST("/metafields", d.ShopHandler.CreateMetafield)
	products.POST("/metafields/bulk", d.ShopHandler.BulkSetMetafields)
	products.PUT("/metafields/:metafieldId", d.ShopHandler.UpdateMetafield)
	products.DELETE("/metafields/:metafieldId", d.ShopHandler.DeleteMetafield)
	products.GET("/metafields/:namespace/:key", d.ShopHandler.GetListMetafield)

	e.POST("/webhook/newPaidOrder", d.WebhookHandler.NewPaidOrder)

	admin := e.Group("/admin")
	admin.POST("/bootstrap", d.AdminHandler.Bootstrap)

	var forms []echo.MiddlewareFunc
	if d.CSRF != nil {
		forms = append(forms, d.CSRF)
	}
	pages := admin.Group("", forms...)
	pages.GET("/login", d.AdminHandler.LoginPage)
	pages.POST("/login", d.AdminHandler.Login)

	authMW := middleware.NewAdminSessionMiddleware(d.JWTSecret, adminLoginPath, d.CookieSecure)
	secured := pages.Group("", authMW.RequireAdmin)
	secured.POST("/logout", d.AdminHandler.Logout)
	secured.GET("/media", d.AdminHandler.ListMedia)
	secured.POST("/media/:id/toggle", d.AdminHandler.ToggleMedia)
}
