package models

import "time"

const (
	BillingIntervalMonth   = "month"
	BillingIntervalYear    = "year"
	BillingIntervalUnknown = "unknown"
)

// Price caches the mapping from a payment-provider price to a membership
// tier. Rows are populated lazily from the provider the first time a price id
// shows up in a subscription event.
type Price struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StripePriceID   string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_price_id"`
	StripeProductID string    `gorm:"type:varchar(191);not null;index" json:"stripe_product_id"`
	Tier            string    `gorm:"type:varchar(50);not null;default:'free';index" json:"tier"`
	Currency        string    `gorm:"type:varchar(10);default:'usd'" json:"currency"`
	UnitAmount      int64     `gorm:"default:0" json:"unit_amount"`
	BillingInterval string    `gorm:"type:varchar(16);not null;default:'unknown'" json:"billing_interval"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
