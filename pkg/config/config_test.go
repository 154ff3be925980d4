package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP", "demo.myshopify.com")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "demo.myshopify.com", cfg.Shopify.Shop)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
	assert.Contains(t, cfg.Shopify.Scopes, "read_orders")
	assert.Equal(t, "s3", cfg.Media.Backend)
	assert.EqualValues(t, 2048, cfg.Media.MaxImageWidth)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Len(t, cfg.Kafka.Brokers, 2)
	assert.Equal(t, "community_media", cfg.Search.Index)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		DatabaseURL: "postgres://x",
		Admin: AdminConfig{
			JWTSecret:  "jwt",
			SessionKey: "session",
			CSRFKey:    strings.Repeat("k", 32),
		},
		Shopify: ShopifyConfig{Shop: "demo.myshopify.com"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Admin.CSRFKey = "short"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSRF_KEY")

	cfg.DatabaseURL = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, "missing required env DATABASE_URL", err.Error())
}
