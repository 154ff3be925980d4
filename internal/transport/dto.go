package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/platform"
)

// FlexString decodes a JSON string or number into its text form, so platform
// ids and prices can arrive either way. null decodes to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// UnmarshalParam lets echo bind form and query values into FlexString.
func (f *FlexString) UnmarshalParam(param string) error {
	*f = FlexString(strings.TrimSpace(param))
	return nil
}

func (f FlexString) String() string { return string(f) }

type WebhookCustomer struct {
	ID        FlexString `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
}

type WebhookLineItem struct {
	ProductID FlexString `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Price     FlexString `json:"price"`
	Title     string     `json:"title"`
	Name      string     `json:"name"`
}

type PaidOrderWebhook struct {
	ID         FlexString        `json:"id"`
	TotalPrice FlexString        `json:"total_price"`
	Currency   string            `json:"currency"`
	Customer   *WebhookCustomer  `json:"customer"`
	LineItems  []WebhookLineItem `json:"line_items"`
}

type WebhookResponse struct {
	OrderID   uint `json:"orderId,omitempty"`
	Items     int  `json:"items"`
	Duplicate bool `json:"duplicate"`
}

// OwnershipQuery carries the identity fields shared by the ownership-gated
// endpoints.
type OwnershipQuery struct {
	CustomerID FlexString `json:"customerId" query:"customerId" form:"customerId"`
	OrderID    FlexString `json:"orderId"    query:"orderId"    form:"orderId"`
	Signature  string     `json:"signature"  query:"signature"  form:"signature"`
}

type SubmitMediaRequest struct {
	OwnershipQuery
	ProductID  FlexString `json:"productId"  form:"productId"`
	Filter     string     `json:"filter"     form:"filter"`
	FileBase64 string     `json:"fileBase64" form:"fileBase64"`
	Filename   string     `json:"filename"   form:"filename"`
}

type UploadRequest struct {
	FileBase64 string `json:"fileBase64"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mimeType"`
	Alt        string `json:"alt"`
}

type LikeRequest struct {
	CustomerID FlexString `json:"customerId" form:"customerId"`
	Signature  string     `json:"signature"  form:"signature"`
}

type LikeResponse struct {
	MediaID   uint  `json:"mediaId"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type MediaView struct {
	ID               uint             `json:"id"`
	PublicID         string           `json:"publicId"`
	URL              string           `json:"url"`
	Type             models.MediaType `json:"type"`
	ShopifyProductID string           `json:"productId"`
	ProductName      string           `json:"productName,omitempty"`
	Approved         bool             `json:"approved"`
	LikeCount        int64            `json:"likeCount"`
	Liked            bool             `json:"liked"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func NewMediaView(m models.Media, likes int64) MediaView {
	v := MediaView{
		ID:               m.ID,
		PublicID:         m.PublicID,
		URL:              m.URL,
		Type:             m.Type,
		ShopifyProductID: m.ShopifyProductID,
		Approved:         m.Approved,
		LikeCount:        likes,
		CreatedAt:        m.CreatedAt,
	}
	if m.Product != nil {
		v.ProductName = m.Product.Name
	}
	return v
}

type GalleryResponse struct {
	Authorized bool        `json:"authorized"`
	Media      []MediaView `json:"media"`
}

type MediaListResponse struct {
	ProductID string      `json:"productId"`
	Media     []MediaView `json:"media"`
}

type SubmitMediaResponse struct {
	Media MediaView `json:"media"`
	URL   string    `json:"url"`
}

type StatusResponse struct {
	Shop      string `json:"shop"`
	Connected bool   `json:"connected"`
}

type MetafieldUpdateRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type MetafieldBulkRequest struct {
	Metafields []platform.Metafield `json:"metafields"`
}

type MetafieldBulkResponse struct {
	Metafields  []platform.Metafield `json:"metafields"`
	FailedIndex *int                 `json:"failedIndex,omitempty"`
	Error       string               `json:"error,omitempty"`
}

type BootstrapRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}
