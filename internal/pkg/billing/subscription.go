package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

// handleSubscriptionUpsert covers customer.subscription.created and
// customer.subscription.updated. The write is an atomic upsert keyed on the
// external subscription id; the profile-tier mirror is best effort and never
// fails the handler.
func (d *Dispatcher) handleSubscriptionUpsert(ctx context.Context, event *stripe.Event) Result {
	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return failure(fmt.Sprintf("decode subscription: %v", err))
	}
	if strings.TrimSpace(payload.ID) == "" {
		return failure("subscription payload missing id")
	}

	customer, err := d.repo.GetCustomerByStripeID(payload.Customer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(fmt.Sprintf("no user linked to customer %s", payload.Customer))
		}
		return failure(fmt.Sprintf("customer lookup failed: %v", err))
	}

	if len(payload.Items.Data) == 0 {
		return failure("subscription has no line items")
	}
	item := payload.Items.Data[0]
	priceID := strings.TrimSpace(item.Price.ID)
	if priceID == "" {
		return failure("subscription line item missing price id")
	}

	price, err := d.resolvePrice(ctx, priceID)
	if err != nil {
		return failure(fmt.Sprintf("resolve price %s: %v", priceID, err))
	}

	periodStart := payload.CurrentPeriodStart
	periodEnd := payload.CurrentPeriodEnd
	if periodStart == 0 && periodEnd == 0 {
		// Newer API versions carry the period on the line item.
		periodStart = item.CurrentPeriodStart
		periodEnd = item.CurrentPeriodEnd
	}

	sub := &models.Subscription{
		StripeSubscriptionID: strings.TrimSpace(payload.ID),
		UserID:               customer.UserID,
		StripePriceID:        price.StripePriceID,
		Tier:                 price.Tier,
		Status:               strings.ToLower(strings.TrimSpace(payload.Status)),
		CurrentPeriodStart:   unixToTime(periodStart),
		CurrentPeriodEnd:     unixToTime(periodEnd),
		CancelAtPeriodEnd:    payload.CancelAtPeriodEnd,
		CanceledAt:           unixToTime(payload.CanceledAt),
	}
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusActive
	}
	if err := d.repo.UpsertSubscription(sub); err != nil {
		return failure(fmt.Sprintf("upsert subscription: %v", err))
	}

	if isEntitlingStatus(sub.Status) {
		if err := d.repo.SetProfileTier(customer.UserID, sub.Tier); err != nil {
			// The subscription row is the source of truth; a failed mirror
			// must not fail the primary write.
			log.Printf("[billing] profile tier mirror failed for user %d: %v", customer.UserID, err)
		}
	}

	return success(fmt.Sprintf("subscription %s synced (tier %s)", sub.StripeSubscriptionID, sub.Tier))
}

// handleSubscriptionDeleted marks the row canceled and downgrades the owner
// back to the free tier. A deletion for an unknown subscription id is a
// failure, not a silent no-op.
func (d *Dispatcher) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) Result {
	_ = ctx
	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return failure(fmt.Sprintf("decode subscription: %v", err))
	}
	if strings.TrimSpace(payload.ID) == "" {
		return failure("subscription payload missing id")
	}

	canceledAt := time.Now().UTC()
	if t := unixToTime(payload.CanceledAt); t != nil {
		canceledAt = *t
	}

	sub, err := d.repo.CancelSubscription(strings.TrimSpace(payload.ID), canceledAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(fmt.Sprintf("no subscription row for %s", payload.ID))
		}
		return failure(fmt.Sprintf("cancel subscription: %v", err))
	}

	if err := d.repo.SetProfileTier(sub.UserID, string(entitlements.TierFree)); err != nil {
		log.Printf("[billing] profile tier reset failed for user %d: %v", sub.UserID, err)
	}

	return success(fmt.Sprintf("subscription %s canceled", sub.StripeSubscriptionID))
}

// resolvePrice returns the cached tier mapping for a price id, populating it
// from the provider on first sight. Later events with the same price id stay
// on the cache-hit path and never call the provider again.
func (d *Dispatcher) resolvePrice(ctx context.Context, priceID string) (*models.Price, error) {
	cached, err := d.repo.GetPriceByStripeID(priceID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	live, err := d.provider.GetPrice(ctx, priceID)
	if err != nil {
		return nil, err
	}

	price := &models.Price{
		StripePriceID:   priceID,
		StripeProductID: live.ProductID,
		Tier:            string(InferTier(live.ProductName, live.ProductMetadata)),
		Currency:        live.Currency,
		UnitAmount:      live.UnitAmount,
		BillingInterval: normalizeInterval(live.Interval),
	}
	if err := d.repo.CreatePriceIfNotExists(price); err != nil {
		return nil, err
	}
	return price, nil
}

func normalizeInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case models.BillingIntervalMonth, models.BillingIntervalYear:
		return strings.ToLower(strings.TrimSpace(interval))
	default:
		return models.BillingIntervalUnknown
	}
}
