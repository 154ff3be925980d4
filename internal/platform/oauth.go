package platform

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrInvalidCallbackHMAC = errors.New("platform: invalid callback hmac")
	ErrStateMismatch       = errors.New("platform: oauth state mismatch")

	shopDomainRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)
)

func ValidShopDomain(shop string) bool {
	return shopDomainRe.MatchString(shop)
}

// OAuth drives the authorization-code flow for the configured app and stores
// the obtained token in Tokens.
type OAuth struct {
	APIKey      string
	APISecret   string
	Scopes      []string
	RedirectURL string
	Tokens      TokenStore

	// BaseURL overrides https://<shop> for token exchange; used in tests.
	BaseURL string
}

func (o *OAuth) config(shop string) *oauth2.Config {
	base := "https://" + shop
	if o.BaseURL != "" {
		base = strings.TrimRight(o.BaseURL, "/")
	}
	return &oauth2.Config{
		ClientID:     o.APIKey,
		ClientSecret: o.APISecret,
		RedirectURL:  o.RedirectURL,
		// The platform expects one comma separated scope parameter.
		Scopes: []string{strings.Join(o.Scopes, ",")},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/admin/oauth/authorize",
			TokenURL:  base + "/admin/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (o *OAuth) AuthCodeURL(shop, state string) (string, error) {
	if !ValidShopDomain(shop) {
		return "", ErrInvalidShop
	}
	return o.config(shop).AuthCodeURL(state), nil
}

// Callback validates the redirect back from the platform, exchanges the code
// and persists the access token for the shop.
func (o *OAuth) Callback(ctx context.Context, query url.Values, expectedState string) (string, error) {
	shop := strings.ToLower(strings.TrimSpace(query.Get("shop")))
	if !ValidShopDomain(shop) {
		return "", ErrInvalidShop
	}
	if expectedState == "" || query.Get("state") != expectedState {
		return "", ErrStateMismatch
	}
	if !VerifyQueryHMAC(query, o.APISecret) {
		return "", ErrInvalidCallbackHMAC
	}

	tok, err := o.config(shop).Exchange(ctx, query.Get("code"))
	if err != nil {
		return "", err
	}
	if err := o.Tokens.Set(ctx, shop, tok.AccessToken); err != nil {
		return "", err
	}
	return shop, nil
}

// VerifyQueryHMAC checks the hmac parameter of a platform redirect: the hex
// HMAC-SHA256 of the remaining parameters sorted by key and joined as k=v&k=v.
func VerifyQueryHMAC(query url.Values, secret string) bool {
	provided := query.Get("hmac")
	if provided == "" || secret == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
