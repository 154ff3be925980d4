package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/community_gallery/internal/es"
	"github.com/Skotchmaster/community_gallery/internal/httpserver"
	"github.com/Skotchmaster/community_gallery/internal/mediahost"
	"github.com/Skotchmaster/community_gallery/internal/mykafka"
	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/internal/service"
	"github.com/Skotchmaster/community_gallery/pkg/config"
	pkgdb "github.com/Skotchmaster/community_gallery/pkg/db"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
	loggingmw "github.com/Skotchmaster/community_gallery/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := &repo.GormRepo{DB: db}

	var tokenStore platform.TokenStore = platform.NewMemoryTokenStore()
	if cfg.Redis.Addr != "" {
		rs, err := platform.NewRedisTokenStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rs.Close()
		tokenStore = rs
	}
	if cfg.Shopify.AccessToken != "" {
		if err := tokenStore.Set(ctx, cfg.Shopify.Shop, cfg.Shopify.AccessToken); err != nil {
			log.Fatalf("seed access token: %v", err)
		}
	}

	shop := platform.NewClient(cfg.Shopify.Shop, cfg.Shopify.APIVersion, tokenStore)
	oauth := &platform.OAuth{
		APIKey:      cfg.Shopify.APIKey,
		APISecret:   cfg.Shopify.APISecret,
		Scopes:      cfg.Shopify.Scopes,
		RedirectURL: cfg.Shopify.RedirectURL,
		Tokens:      tokenStore,
	}

	backend, err := newMediaBackend(ctx, cfg.Media)
	if err != nil {
		log.Fatalf("media backend: %v", err)
	}
	uploader := mediahost.NewUploader(backend, cfg.Media.Folder, cfg.Media.MaxImageWidth)

	var events mykafka.Publisher = mykafka.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		prod := mykafka.NewProducer(cfg.Kafka.Brokers)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka_close_failed", "error", err)
			}
		}()
		events = prod
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index es.Indexer = es.Noop{}
	if cfg.Search.URL != "" {
		esClient, err := es.NewClient(ctx, cfg.Search.URL, cfg.Search.User, cfg.Search.Password, cfg.Search.Index)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = esClient
	}

	signer := ownership.NewSigner(cfg.OwnershipSecret)
	if !signer.Enabled() {
		logger.Warn("signature_check_skipped", "reason", "OWNERSHIP_HMAC_SECRET is empty")
	}
	verifier := ownership.NewVerifier(shop, signer)

	mediaSvc := &service.MediaService{
		Repo:     store,
		Verifier: verifier,
		Uploader: uploader,
		Products: shop,
		Signer:   signer,
		Events:   events,
		Topic:    cfg.Kafka.Topic,
		Folder:   cfg.Media.Folder,
	}
	webhookSvc := &service.WebhookService{
		Repo:   store,
		Events: events,
		Topic:  cfg.Kafka.Topic,
		Secret: cfg.Shopify.WebhookSecret,
	}
	adminSvc := &service.AdminService{
		Repo:       store,
		JWTSecret:  []byte(cfg.Admin.JWTSecret),
		SessionTTL: cfg.Admin.SessionTTL,
	}
	moderationSvc := &service.ModerationService{
		Repo:   store,
		Index:  index,
		Events: events,
		Topic:  cfg.Kafka.Topic,
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.Admin.SessionKey))
	sessionStore.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   int(cfg.Admin.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Admin.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	templates := httpserver.NewTemplateCache()
	if err := templates.Load(nil); err != nil {
		log.Fatalf("templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = templates
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("30M"))

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		MediaHandler:   &httpserver.MediaHTTP{Svc: mediaSvc},
		ShopHandler:    &httpserver.ShopHTTP{Svc: &service.ShopService{API: shop, Shop: cfg.Shopify.Shop}},
		OAuthHandler: &httpserver.OAuthHTTP{
			OAuth:        oauth,
			DefaultShop:  cfg.Shopify.Shop,
			CookieSecure: cfg.Admin.CookieSecure,
			AfterInstall: cfg.Shopify.AfterInstall,
		},
		WebhookHandler: &httpserver.WebhookHTTP{Svc: webhookSvc},
		AdminHandler: &httpserver.AdminHTTP{
			Admin:        adminSvc,
			Moderation:   moderationSvc,
			SessionStore: sessionStore,
			CookieSecure: cfg.Admin.CookieSecure,
		},
		JWTSecret:    []byte(cfg.Admin.JWTSecret),
		CookieSecure: cfg.Admin.CookieSecure,
		CSRF: echo.WrapMiddleware(csrf.Protect(
			[]byte(cfg.Admin.CSRFKey),
			csrf.Secure(cfg.Admin.CookieSecure),
			csrf.Path("/admin"),
		)),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}

func newMediaBackend(ctx context.Context, cfg config.MediaConfig) (mediahost.Backend, error) {
	switch cfg.Backend {
	case "minio":
		return mediahost.NewMinioBackend(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.PublicURL, cfg.UseSSL)
	case "s3", "":
		return mediahost.NewS3Backend(ctx, mediahost.S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, errors.New("unknown MEDIA_BACKEND " + cfg.Backend)
	}
}
