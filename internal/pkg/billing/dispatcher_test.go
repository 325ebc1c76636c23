package billing

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v82"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

func evt(id, eventType, raw string) *stripe.Event {
	return &stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func newTestDispatcher() (*Dispatcher, *fakeRepository, *fakeProvider) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	return NewDispatcher(repo, provider), repo, provider
}

func linkCustomer(repo *fakeRepository, userID uint, stripeCustomerID string) {
	repo.CreateCustomer(&models.Customer{
		UserID:           userID,
		StripeCustomerID: stripeCustomerID,
		Email:            "golfer@example.com",
	})
}

func TestDispatchUnhandledType(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", "payment_intent.succeeded", `{}`))
	if !res.Success {
		t.Fatalf("unhandled event type should be acknowledged, got failure: %s", res.Message)
	}
	if !strings.Contains(res.Message, "Unhandled event type") {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if len(repo.customersByUser) != 0 || len(repo.subscriptions) != 0 {
		t.Error("unhandled event must not touch state")
	}
}

func TestCheckoutMissingUserRef(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventCheckoutCompleted,
		`{"id":"cs_1","customer":"cus_1","customer_email":"golfer@example.com"}`))
	if res.Success {
		t.Fatal("checkout without a user reference must fail")
	}
	if !strings.Contains(res.Message, "missing user reference") {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if len(repo.customersByUser) != 0 {
		t.Error("no customer row may be created without a user reference")
	}
}

func TestCheckoutCreatesCustomerOnce(t *testing.T) {
	d, repo, provider := newTestDispatcher()
	provider.customers["cus_1"] = &ProviderCustomer{ID: "cus_1", Email: "from-provider@example.com"}

	session := `{"id":"cs_1","customer":"cus_1","metadata":{"user_id":"7"}}`

	res := d.Dispatch(context.Background(), evt("evt_1", EventCheckoutCompleted, session))
	if !res.Success {
		t.Fatalf("first checkout failed: %s", res.Message)
	}
	c, err := repo.GetCustomerByUserID(7)
	if err != nil {
		t.Fatalf("customer not created: %v", err)
	}
	if c.StripeCustomerID != "cus_1" {
		t.Errorf("StripeCustomerID = %q, want cus_1", c.StripeCustomerID)
	}
	// Session carried no email, handler should have fetched it.
	if c.Email != "from-provider@example.com" {
		t.Errorf("Email = %q, want provider email", c.Email)
	}
	if provider.customerCalls != 1 {
		t.Errorf("provider customer calls = %d, want 1", provider.customerCalls)
	}

	// Redelivery must be a no-op, including no provider fetch.
	res = d.Dispatch(context.Background(), evt("evt_2", EventCheckoutCompleted, session))
	if !res.Success {
		t.Fatalf("second checkout failed: %s", res.Message)
	}
	if res.Message != "customer already linked" {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if provider.customerCalls != 1 {
		t.Errorf("provider customer calls after redelivery = %d, want 1", provider.customerCalls)
	}
}

func TestCheckoutClientReferenceFallback(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventCheckoutCompleted,
		`{"id":"cs_1","customer":"cus_9","client_reference_id":"42","customer_email":"ref@example.com"}`))
	if !res.Success {
		t.Fatalf("checkout failed: %s", res.Message)
	}
	if _, err := repo.GetCustomerByUserID(42); err != nil {
		t.Fatalf("customer not created from client_reference_id: %v", err)
	}
}

func TestPriceCacheHit(t *testing.T) {
	d, repo, provider := newTestDispatcher()
	linkCustomer(repo, 7, "cus_1")
	provider.prices["price_123"] = &ProviderPrice{
		ID:          "price_123",
		ProductID:   "prod_1",
		ProductName: "PGV Breakthrough Plan",
		Currency:    "usd",
		UnitAmount:  2900,
		Interval:    "month",
	}

	sub := `{"id":"sub_1","customer":"cus_1","status":"active",
		"current_period_start":1735689600,"current_period_end":1738368000,
		"items":{"data":[{"price":{"id":"price_123"}}]}}`

	res := d.Dispatch(context.Background(), evt("evt_1", EventSubscriptionCreated, sub))
	if !res.Success {
		t.Fatalf("first event failed: %s", res.Message)
	}
	if provider.priceCalls != 1 {
		t.Fatalf("provider price calls = %d, want 1", provider.priceCalls)
	}

	price, err := repo.GetPriceByStripeID("price_123")
	if err != nil {
		t.Fatalf("price not cached: %v", err)
	}
	if price.Tier != string(entitlements.TierBreakthrough) {
		t.Errorf("cached tier = %q, want breakthrough", price.Tier)
	}

	res = d.Dispatch(context.Background(), evt("evt_2", EventSubscriptionUpdated, sub))
	if !res.Success {
		t.Fatalf("second event failed: %s", res.Message)
	}
	if provider.priceCalls != 1 {
		t.Errorf("provider price calls after cache hit = %d, want 1", provider.priceCalls)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	d, repo, provider := newTestDispatcher()
	linkCustomer(repo, 7, "cus_1")
	provider.prices["price_drv"] = &ProviderPrice{
		ID:          "price_drv",
		ProductID:   "prod_drv",
		ProductName: "PGV Driven Annual",
		Currency:    "usd",
		UnitAmount:  49900,
		Interval:    "year",
	}

	created := `{"id":"sub_1","customer":"cus_1","status":"active",
		"items":{"data":[{"price":{"id":"price_drv"},
		"current_period_start":1735689600,"current_period_end":1767225600}]}}`

	res := d.Dispatch(context.Background(), evt("evt_1", EventSubscriptionCreated, created))
	if !res.Success {
		t.Fatalf("created failed: %s", res.Message)
	}
	stored := repo.subscriptions["sub_1"]
	if stored == nil {
		t.Fatal("subscription row missing")
	}
	if stored.Status != models.SubscriptionStatusActive {
		t.Errorf("status = %q, want active", stored.Status)
	}
	if stored.Tier != string(entitlements.TierDriven) {
		t.Errorf("tier = %q, want driven", stored.Tier)
	}
	if stored.CurrentPeriodStart == nil || stored.CurrentPeriodEnd == nil {
		t.Error("item-level period bounds must be stored")
	}
	if repo.profileTiers[7] != string(entitlements.TierDriven) {
		t.Errorf("profile tier = %q, want driven", repo.profileTiers[7])
	}

	updated := `{"id":"sub_1","customer":"cus_1","status":"past_due","cancel_at_period_end":true,
		"items":{"data":[{"price":{"id":"price_drv"}}]}}`
	res = d.Dispatch(context.Background(), evt("evt_2", EventSubscriptionUpdated, updated))
	if !res.Success {
		t.Fatalf("updated failed: %s", res.Message)
	}
	stored = repo.subscriptions["sub_1"]
	if stored.Status != models.SubscriptionStatusPastDue {
		t.Errorf("status = %q, want past_due", stored.Status)
	}
	if !stored.CancelAtPeriodEnd {
		t.Error("cancel_at_period_end not persisted")
	}
	// past_due still entitles, so the mirror keeps the paid tier.
	if repo.profileTiers[7] != string(entitlements.TierDriven) {
		t.Errorf("mirrored tier after past_due = %q, want driven", repo.profileTiers[7])
	}
	if len(repo.subscriptions) != 1 {
		t.Fatalf("subscription rows = %d, want 1", len(repo.subscriptions))
	}

	deleted := `{"id":"sub_1","customer":"cus_1","status":"canceled","canceled_at":1738368000}`
	res = d.Dispatch(context.Background(), evt("evt_3", EventSubscriptionDeleted, deleted))
	if !res.Success {
		t.Fatalf("deleted failed: %s", res.Message)
	}
	stored = repo.subscriptions["sub_1"]
	if stored.Status != models.SubscriptionStatusCanceled {
		t.Errorf("status = %q, want canceled", stored.Status)
	}
	if stored.CanceledAt == nil {
		t.Error("canceled_at not set")
	}
	if repo.profileTiers[7] != string(entitlements.TierFree) {
		t.Errorf("profile tier after deletion = %q, want free", repo.profileTiers[7])
	}
}

func TestSubscriptionUnknownCustomer(t *testing.T) {
	d, _, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventSubscriptionCreated,
		`{"id":"sub_1","customer":"cus_missing","status":"active","items":{"data":[{"price":{"id":"price_1"}}]}}`))
	if res.Success {
		t.Fatal("subscription for an unlinked customer must fail")
	}
	if !strings.Contains(res.Message, "no user linked to customer cus_missing") {
		t.Errorf("unexpected message: %s", res.Message)
	}
}

func TestSubscriptionDeletedNoRow(t *testing.T) {
	d, _, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventSubscriptionDeleted,
		`{"id":"sub_ghost","customer":"cus_1"}`))
	if res.Success {
		t.Fatal("deletion of an unknown subscription must fail")
	}
	if !strings.Contains(res.Message, "no subscription row for sub_ghost") {
		t.Errorf("unexpected message: %s", res.Message)
	}
}

func TestInvoiceDedup(t *testing.T) {
	d, repo, _ := newTestDispatcher()
	linkCustomer(repo, 7, "cus_1")

	invoice := `{"id":"in_1","customer":"cus_1","subscription":"sub_1",
		"amount_due":2900,"amount_paid":2900,"currency":"usd"}`

	res := d.Dispatch(context.Background(), evt("evt_1", EventInvoicePaid, invoice))
	if !res.Success {
		t.Fatalf("first delivery failed: %s", res.Message)
	}
	if len(repo.invoiceEventIDs) != 1 {
		t.Fatalf("invoice rows = %d, want 1", len(repo.invoiceEventIDs))
	}

	// Same event id redelivered.
	res = d.Dispatch(context.Background(), evt("evt_1", EventInvoicePaid, invoice))
	if !res.Success {
		t.Fatalf("redelivery failed: %s", res.Message)
	}
	if res.Message != "duplicate invoice event, already recorded" {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if len(repo.invoiceEventIDs) != 1 {
		t.Errorf("invoice rows after redelivery = %d, want 1", len(repo.invoiceEventIDs))
	}

	// A different event id for a failed payment is a distinct row.
	res = d.Dispatch(context.Background(), evt("evt_2", EventInvoiceFailed, invoice))
	if !res.Success {
		t.Fatalf("failed-payment delivery failed: %s", res.Message)
	}
	if len(repo.invoiceEventIDs) != 2 {
		t.Errorf("invoice rows = %d, want 2", len(repo.invoiceEventIDs))
	}
	if got := repo.invoiceEventIDs["evt_2"].Status; got != models.InvoiceStatusFailed {
		t.Errorf("status = %q, want failed", got)
	}
}

func TestInvoiceWithoutSubscriptionIgnored(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventInvoicePaid,
		`{"id":"in_1","customer":"cus_1","amount_due":500,"currency":"usd"}`))
	if !res.Success {
		t.Fatalf("one-off invoice must be acknowledged: %s", res.Message)
	}
	if res.Message != "invoice not linked to a subscription, ignored" {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if len(repo.invoiceEventIDs) != 0 {
		t.Error("one-off invoice must not be recorded")
	}
}

func TestCustomerUpdatedUnlinked(t *testing.T) {
	d, _, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventCustomerUpdated,
		`{"id":"cus_stranger","email":"stranger@example.com"}`))
	if !res.Success {
		t.Fatalf("unlinked customer update must be acknowledged: %s", res.Message)
	}
	if res.Message != "Customer not linked to a user in our system" {
		t.Errorf("unexpected message: %s", res.Message)
	}
}

func TestCustomerUpdatedRefreshesEmail(t *testing.T) {
	d, repo, _ := newTestDispatcher()
	linkCustomer(repo, 7, "cus_1")

	res := d.Dispatch(context.Background(), evt("evt_1", EventCustomerUpdated,
		`{"id":"cus_1","email":"new-address@example.com"}`))
	if !res.Success {
		t.Fatalf("update failed: %s", res.Message)
	}
	c, _ := repo.GetCustomerByStripeID("cus_1")
	if c.Email != "new-address@example.com" {
		t.Errorf("email = %q, want new-address@example.com", c.Email)
	}
}

func TestRecordEventIdempotent(t *testing.T) {
	d, repo, _ := newTestDispatcher()
	event := evt("evt_1", EventInvoicePaid, `{}`)

	created, row, err := d.RecordEvent(context.Background(), event, []byte(`{"id":"evt_1"}`), true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !created || row == nil {
		t.Fatal("first record should create a ledger row")
	}

	created, again, err := d.RecordEvent(context.Background(), event, []byte(`{"id":"evt_1"}`), true)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if created {
		t.Error("redelivered event must not create a second ledger row")
	}
	if again.ID != row.ID {
		t.Errorf("ledger row id = %d, want %d", again.ID, row.ID)
	}

	if err := d.MarkProcessed(context.Background(), row.ID, failure("boom")); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	if repo.webhookEvents["evt_1"].ProcessingError != "boom" {
		t.Error("processing error not stamped on ledger row")
	}
}

func TestDispatchMalformedPayload(t *testing.T) {
	d, _, _ := newTestDispatcher()

	res := d.Dispatch(context.Background(), evt("evt_1", EventSubscriptionCreated, `{"id":`))
	if res.Success {
		t.Fatal("malformed payload must fail")
	}
}
