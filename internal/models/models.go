package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Store struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    uint   `gorm:"uniqueIndex;not null"     json:"seller_id"`
	Name        string `gorm:"not null"                 json:"name"`
	Description string `json:"description"`
	City        string `json:"city"`
	State       string `json:"state"`
	Status      string `gorm:"not null;default:pending" json:"status"`
	LogoURL     string `json:"logo_url"`
	BannerURL   string `json:"banner_url"`
}

type Product struct {
	ID            uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID       uint     `gorm:"index;not null"           json:"store_id"`
	Name          string   `gorm:"not null"                 json:"name"`
	Description   string   `json:"description"`
	Price         float64  `gorm:"not null"                 json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Unit          string   `json:"unit"`
	Stock         uint     `json:"stock"`
	ImageURL      string   `json:"image_url"`
	Status        string   `gorm:"not null;default:active"  json:"status"`
}

// EffectivePrice is the discount price when one is set, the base price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"                 json:"quantity"`
}

type Order struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string    `gorm:"uniqueIndex;not null"     json:"order_number"`
	UserID          uint      `gorm:"index;not null"           json:"user_id"`
	TotalAmount     float64   `gorm:"not null"                 json:"total_amount"`
	Status          string    `gorm:"not null;default:pending" json:"status"`
	ShippingAddress string    `json:"shipping_address"`
	ShippingCity    string    `json:"shipping_city"`
	ShippingState   string    `json:"shipping_state"`
	ShippingPincode string    `json:"shipping_pincode"`
	ShippingPhone   string    `json:"shipping_phone"`
	PaymentMethod   string    `gorm:"not null;default:cod"     json:"payment_method"`
	PaymentStatus   string    `gorm:"not null;default:pending" json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
}

type OrderItem struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           uint       `gorm:"index;not null"           json:"order_id"`
	ProductID         uint       `gorm:"not null"                 json:"product_id"`
	StoreID           uint       `gorm:"index;not null"           json:"store_id"`
	Quantity          uint       `gorm:"not null"                 json:"quantity"`
	UnitPrice         float64    `gorm:"not null"                 json:"unit_price"`
	LineTotal         float64    `gorm:"not null"                 json:"line_total"`
	SellerStatus      string     `gorm:"not null;default:pending" json:"seller_status"`
	ReceivedConfirmed bool       `gorm:"default:false"            json:"received_confirmed"`
	ReceivedAt        *time.Time `json:"received_at,omitempty"`
}

type WishlistItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_wish_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_wish_user_product" json:"product_id"`
}
