package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// handleInvoice records paid and failed invoices for bookkeeping. Rows are
// deduplicated on the provider event id, so the provider's at-least-once
// delivery cannot inflate the invoice history.
func (d *Dispatcher) handleInvoice(ctx context.Context, event *stripe.Event, status string) Result {
	_ = ctx
	var payload invoicePayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return failure(fmt.Sprintf("decode invoice: %v", err))
	}

	if strings.TrimSpace(payload.Subscription) == "" {
		return success("invoice not linked to a subscription, ignored")
	}

	customer, err := d.repo.GetCustomerByStripeID(payload.Customer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(fmt.Sprintf("no user linked to customer %s", payload.Customer))
		}
		return failure(fmt.Sprintf("customer lookup failed: %v", err))
	}

	invoice := &models.Invoice{
		StripeEventID:        event.ID,
		StripeInvoiceID:      strings.TrimSpace(payload.ID),
		StripeSubscriptionID: strings.TrimSpace(payload.Subscription),
		UserID:               customer.UserID,
		AmountDue:            payload.AmountDue,
		AmountPaid:           payload.AmountPaid,
		Currency:             payload.Currency,
		Status:               status,
		InvoicePDF:           payload.InvoicePDF,
		HostedInvoiceURL:     payload.HostedInvoiceURL,
	}
	created, err := d.repo.CreateInvoiceIfNew(invoice)
	if err != nil {
		return failure(fmt.Sprintf("record invoice: %v", err))
	}
	if !created {
		return success("duplicate invoice event, already recorded")
	}
	return success(fmt.Sprintf("invoice %s recorded (%s)", invoice.StripeInvoiceID, status))
}
