package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" envDefault:"community-gallery"`
		ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
		LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

		DatabaseURL string `env:"DATABASE_URL"`

		Admin   AdminConfig
		Shopify ShopifyConfig `envPrefix:"SHOPIFY_"`
		Media   MediaConfig   `envPrefix:"MEDIA_"`
		Redis   RedisConfig   `envPrefix:"REDIS_"`
		Kafka   KafkaConfig   `envPrefix:"KAFKA_"`
		Search  SearchConfig  `envPrefix:"ES_"`

		OwnershipSecret string `env:"OWNERSHIP_HMAC_SECRET"`
	}

	AdminConfig struct {
		JWTSecret    string        `env:"JWT_SECRET"`
		SessionTTL   time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"12h"`
		SessionKey   string        `env:"SESSION_KEY"`
		CSRFKey      string        `env:"CSRF_KEY"`
		CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	}

	ShopifyConfig struct {
		Shop          string   `env:"SHOP"`
		APIVersion    string   `env:"API_VERSION" envDefault:"2024-10"`
		APIKey        string   `env:"API_KEY"`
		APISecret     string   `env:"API_SECRET"`
		Scopes        []string `env:"SCOPES" envSeparator:"," envDefault:"read_products,write_products,read_orders,read_customers,write_files"`
		RedirectURL   string   `env:"REDIRECT_URL"`
		AfterInstall  string   `env:"AFTER_INSTALL_URL"`
		AccessToken   string   `env:"ACCESS_TOKEN"`
		WebhookSecret string   `env:"WEBHOOK_SECRET"`
	}

	MediaConfig struct {
		Backend       string `env:"BACKEND" envDefault:"s3"`
		Endpoint      string `env:"ENDPOINT"`
		Region        string `env:"REGION" envDefault:"auto"`
		AccessKey     string `env:"ACCESS_KEY"`
		SecretKey     string `env:"SECRET_KEY"`
		Bucket        string `env:"BUCKET" envDefault:"community-media"`
		UseSSL        bool   `env:"USE_SSL" envDefault:"true"`
		PublicURL     string `env:"PUBLIC_URL"`
		Folder        string `env:"FOLDER" envDefault:"community"`
		MaxImageWidth uint   `env:"MAX_IMAGE_WIDTH" envDefault:"2048"`
	}

	RedisConfig struct {
		Addr     string `env:"ADDR"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	}

	KafkaConfig struct {
		Brokers []string `env:"BROKERS" envSeparator:","`
		Topic   string   `env:"TOPIC" envDefault:"gallery_events"`
	}

	SearchConfig struct {
		URL      string `env:"URL"`
		User     string `env:"USER"`
		Password string `env:"PASSWORD"`
		Index    string `env:"INDEX" envDefault:"community_media"`
	}
)

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}
