package controllers

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/repository"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/billing"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/database"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/env"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/usercontext"
)

var (
	dispatcherMu     sync.Mutex
	sharedDispatcher *billing.Dispatcher
)

func getDispatcher() *billing.Dispatcher {
	dispatcherMu.Lock()
	defer dispatcherMu.Unlock()

	if sharedDispatcher == nil {
		provider, err := billing.NewStripeProviderFromEnv()
		if err != nil {
			// Handlers that need the provider will surface the failure per
			// event; cached prices still resolve without it.
			log.Printf("stripe provider unavailable: %v", err)
		}
		sharedDispatcher = billing.NewDispatcher(billing.NewRepository(database.GetDB()), provider)
	}
	return sharedDispatcher
}

// SetBillingDispatcher swaps the dispatcher; used by tests.
func SetBillingDispatcher(d *billing.Dispatcher) {
	dispatcherMu.Lock()
	defer dispatcherMu.Unlock()
	sharedDispatcher = d
}

// HandleStripeWebhook receives subscription lifecycle events. Signature
// verification happens before anything else touches the payload; a non-2xx
// response makes the provider redeliver.
func HandleStripeWebhook(c *fiber.Ctx) error {
	secret := strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	if secret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "stripe_unavailable", "message": "Webhook secret is not configured"})
	}

	payload := c.Body()
	sigHeader := strings.TrimSpace(c.Get("Stripe-Signature"))
	if sigHeader == "" {
		// Intentionally vague; missing signature is treated as invalid auth.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature", "message": "Invalid Stripe signature"})
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature", "message": "Invalid Stripe signature"})
	}

	d := getDispatcher()
	ctx := c.Context()

	created, ledgerRow, err := d.RecordEvent(ctx, &event, payload, true)
	if err != nil {
		log.Printf("webhook ledger write failed for %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to record webhook event"})
	}

	// A redelivered event that already processed cleanly is acknowledged
	// without running the handlers again.
	if !created && ledgerRow.ProcessedAt != nil && ledgerRow.ProcessingError == "" {
		return c.JSON(fiber.Map{"received": true, "status": "duplicate"})
	}

	result := d.Dispatch(ctx, &event)

	if err := d.MarkProcessed(ctx, ledgerRow.ID, result); err != nil {
		log.Printf("webhook ledger update failed for %s: %v", event.ID, err)
	}

	if !result.Success {
		log.Printf("webhook %s (%s) failed: %s", event.ID, event.Type, result.Message)
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}

	return c.JSON(result)
}

// HandleGetSubscription returns the caller's current subscription state.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub, err := repo.GetActiveByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"tier": "free", "subscription": nil})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	return c.JSON(fiber.Map{
		"tier": sub.Tier,
		"subscription": fiber.Map{
			"id":                   sub.StripeSubscriptionID,
			"status":               sub.Status,
			"tier":                 sub.Tier,
			"cancel_at_period_end": sub.CancelAtPeriodEnd,
			"current_period_start": formatTimePtr(sub.CurrentPeriodStart),
			"current_period_end":   formatTimePtr(sub.CurrentPeriodEnd),
			"canceled_at":          formatTimePtr(sub.CanceledAt),
		},
	})
}

// HandleListInvoices returns the caller's billing history.
func HandleListInvoices(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	offset, limit := parsePagination(c, 20, 100)
	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	invoices, err := repo.GetInvoicesByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load invoices"})
	}

	items := make([]fiber.Map, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, fiber.Map{
			"invoice_id":         inv.StripeInvoiceID,
			"status":             inv.Status,
			"amount_due":         inv.AmountDue,
			"amount_paid":        inv.AmountPaid,
			"currency":           inv.Currency,
			"hosted_invoice_url": inv.HostedInvoiceURL,
			"invoice_pdf":        inv.InvoicePDF,
			"created_at":         inv.CreatedAt.UTC(),
		})
	}

	return c.JSON(fiber.Map{"invoices": items})
}
