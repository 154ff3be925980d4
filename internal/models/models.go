package models

import (
	"time"

	"gorm.io/datatypes"
)

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
)

type Customer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	ShopifyID string    `gorm:"size:64;uniqueIndex;not null"     json:"shopify_id"`
	FirstName string    `gorm:"size:255"                         json:"first_name"`
	LastName  string    `gorm:"size:255"                         json:"last_name"`
	Email     string    `gorm:"size:255;index"                   json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Orders []Order `gorm:"foreignKey:CustomerID" json:"-"`
}

type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	ShopifyID  string    `gorm:"size:64;uniqueIndex;not null" json:"shopify_id"`
	TotalPrice string    `gorm:"size:32;not null"             json:"total_price"`
	Currency   string    `gorm:"size:3;not null"              json:"currency"`
	CustomerID *uint     `gorm:"index"                        json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`

	Customer *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []PurchasedItem `gorm:"foreignKey:OrderID"    json:"items,omitempty"`
}

// PurchasedItem is one unit of a line item; a quantity of N yields N rows.
type PurchasedItem struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name             string    `gorm:"size:255"                   json:"name"`
	ShopifyProductID string    `gorm:"size:64;index;not null"     json:"shopify_product_id"`
	Price            string    `gorm:"size:32;not null"           json:"price"`
	OrderID          uint      `gorm:"index;not null"             json:"order_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	ShopifyID string    `gorm:"size:64;uniqueIndex;not null" json:"shopify_id"`
	Name      string    `gorm:"size:255;not null"            json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Media struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	PublicID         string    `gorm:"size:255;not null"             json:"public_id"`
	URL              string    `gorm:"size:1024;not null"            json:"url"`
	Type             MediaType `gorm:"size:16;not null"              json:"type"`
	ShopifyProductID string    `gorm:"size:64;index;not null"        json:"shopify_product_id"`
	ProductID        *uint     `gorm:"index"                         json:"product_id"`
	CustomerID       *uint     `gorm:"index"                         json:"customer_id"`
	Approved         bool      `gorm:"not null;default:false;index"  json:"approved"`
	CreatedAt        time.Time `gorm:"index"                         json:"created_at"`

	Product  *Product  `gorm:"foreignKey:ProductID"  json:"product,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// Like is unique per (customer, media); its presence means "liked".
type Like struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_like_customer_media" json:"customer_id"`
	MediaID    uint      `gorm:"not null;uniqueIndex:idx_like_customer_media;index" json:"media_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type AdminUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// WebhookEvent keeps the raw payload of every accepted webhook delivery.
type WebhookEvent struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic      string         `gorm:"size:100;not null;index"  json:"topic"`
	ResourceID string         `gorm:"size:64;not null;index"   json:"resource_id"`
	WebhookID  string         `gorm:"size:191;index"           json:"webhook_id"`
	Payload    datatypes.JSON `gorm:"not null"                 json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

func All() []any {
	return []any{
		&Customer{},
		&Order{},
		&PurchasedItem{},
		&Product{},
		&Media{},
		&Like{},
		&AdminUser{},
		&WebhookEvent{},
	}
}
