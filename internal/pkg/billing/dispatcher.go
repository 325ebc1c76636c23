package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// Event types this dispatcher understands. Anything else is acknowledged and
// dropped so the provider does not retry deliveries we will never act on.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.paid"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventCustomerUpdated     = "customer.updated"
)

// Dispatcher routes decoded webhook events to their handlers. Both
// collaborators are injected so tests can run against in-memory fakes.
type Dispatcher struct {
	repo     Repository
	provider Provider
}

func NewDispatcher(repo Repository, provider Provider) *Dispatcher {
	return &Dispatcher{repo: repo, provider: provider}
}

// Dispatch processes a single lifecycle event to completion. Events are
// independent; there is no ordering guarantee across deliveries and no
// retry here; redelivery is the provider's responsibility.
func (d *Dispatcher) Dispatch(ctx context.Context, event *stripe.Event) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Sprintf("handler panic: %v", r))
		}
	}()

	if event == nil || event.Data == nil {
		return failure("event payload is empty")
	}

	switch string(event.Type) {
	case EventCheckoutCompleted:
		return d.handleCheckoutCompleted(ctx, event)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return d.handleSubscriptionUpsert(ctx, event)
	case EventSubscriptionDeleted:
		return d.handleSubscriptionDeleted(ctx, event)
	case EventInvoicePaid:
		return d.handleInvoice(ctx, event, models.InvoiceStatusPaid)
	case EventInvoiceFailed:
		return d.handleInvoice(ctx, event, models.InvoiceStatusFailed)
	case EventCustomerUpdated:
		return d.handleCustomerUpdated(ctx, event)
	default:
		return success(fmt.Sprintf("Unhandled event type: %s", event.Type))
	}
}

// RecordEvent persists the raw delivery idempotently before dispatch. The
// second return is the stored ledger row; created == false means this event
// id was seen before and processing can stop.
func (d *Dispatcher) RecordEvent(ctx context.Context, event *stripe.Event, payload []byte, signatureValid bool) (bool, *models.WebhookEvent, error) {
	_ = ctx
	if event == nil || strings.TrimSpace(event.ID) == "" {
		return false, nil, fmt.Errorf("event id is required")
	}

	row := &models.WebhookEvent{
		StripeEventID:  event.ID,
		EventType:      string(event.Type),
		PayloadJSON:    string(payload),
		SignatureValid: signatureValid,
	}
	return d.repo.CreateWebhookEventIfNotExists(row)
}

// MarkProcessed stamps a ledger row with the dispatch outcome.
func (d *Dispatcher) MarkProcessed(ctx context.Context, webhookEventID uint, res Result) error {
	_ = ctx
	errMsg := ""
	if !res.Success {
		errMsg = res.Message
	}
	return d.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
