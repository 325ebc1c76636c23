package models

import "time"

const (
	InvoiceStatusPaid   = "paid"
	InvoiceStatusFailed = "failed"
)

// Invoice is an append-only bookkeeping record of paid and failed invoices.
// The provider event id carries a unique index so a redelivered webhook event
// cannot insert a second row for the same delivery.
type Invoice struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StripeEventID        string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_event_id"`
	StripeInvoiceID      string    `gorm:"type:varchar(191);not null;index" json:"stripe_invoice_id"`
	StripeSubscriptionID string    `gorm:"type:varchar(191);not null;index" json:"stripe_subscription_id"`
	UserID               uint      `gorm:"not null;index" json:"user_id"`
	AmountDue            int64     `gorm:"default:0" json:"amount_due"`
	AmountPaid           int64     `gorm:"default:0" json:"amount_paid"`
	Currency             string    `gorm:"type:varchar(10);default:'usd'" json:"currency"`
	Status               string    `gorm:"type:varchar(32);not null;index" json:"status"`
	InvoicePDF           string    `gorm:"type:varchar(512);default:''" json:"invoice_pdf"`
	HostedInvoiceURL     string    `gorm:"type:varchar(512);default:''" json:"hosted_invoice_url"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}
