package billing

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// fakeRepository is an in-memory Repository so dispatcher behavior can be
// exercised without a database.
type fakeRepository struct {
	customersByUser   map[uint]*models.Customer
	customersByStripe map[string]*models.Customer
	prices            map[string]*models.Price
	subscriptions     map[string]*models.Subscription
	invoiceEventIDs   map[string]*models.Invoice
	profileTiers      map[uint]string
	webhookEvents     map[string]*models.WebhookEvent

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		customersByUser:   make(map[uint]*models.Customer),
		customersByStripe: make(map[string]*models.Customer),
		prices:            make(map[string]*models.Price),
		subscriptions:     make(map[string]*models.Subscription),
		invoiceEventIDs:   make(map[string]*models.Invoice),
		profileTiers:      make(map[uint]string),
		webhookEvents:     make(map[string]*models.WebhookEvent),
	}
}

func (r *fakeRepository) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepository) GetCustomerByUserID(userID uint) (*models.Customer, error) {
	if c, ok := r.customersByUser[userID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	if c, ok := r.customersByStripe[stripeCustomerID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateCustomer(customer *models.Customer) error {
	customer.ID = r.id()
	r.customersByUser[customer.UserID] = customer
	r.customersByStripe[customer.StripeCustomerID] = customer
	return nil
}

func (r *fakeRepository) SaveCustomer(customer *models.Customer) error {
	r.customersByUser[customer.UserID] = customer
	r.customersByStripe[customer.StripeCustomerID] = customer
	return nil
}

func (r *fakeRepository) GetPriceByStripeID(stripePriceID string) (*models.Price, error) {
	if p, ok := r.prices[stripePriceID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreatePriceIfNotExists(price *models.Price) error {
	if existing, ok := r.prices[price.StripePriceID]; ok {
		*price = *existing
		return nil
	}
	price.ID = r.id()
	r.prices[price.StripePriceID] = price
	return nil
}

func (r *fakeRepository) UpsertSubscription(sub *models.Subscription) error {
	if existing, ok := r.subscriptions[sub.StripeSubscriptionID]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = r.id()
	}
	copied := *sub
	r.subscriptions[sub.StripeSubscriptionID] = &copied
	return nil
}

func (r *fakeRepository) CancelSubscription(stripeSubscriptionID string, canceledAt time.Time) (*models.Subscription, error) {
	sub, ok := r.subscriptions[stripeSubscriptionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	sub.Status = models.SubscriptionStatusCanceled
	sub.CanceledAt = &canceledAt
	copied := *sub
	return &copied, nil
}

func (r *fakeRepository) CreateInvoiceIfNew(invoice *models.Invoice) (bool, error) {
	if _, ok := r.invoiceEventIDs[invoice.StripeEventID]; ok {
		return false, nil
	}
	invoice.ID = r.id()
	r.invoiceEventIDs[invoice.StripeEventID] = invoice
	return true, nil
}

func (r *fakeRepository) SetProfileTier(userID uint, tier string) error {
	r.profileTiers[userID] = tier
	return nil
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if stored, ok := r.webhookEvents[event.StripeEventID]; ok {
		return false, stored, nil
	}
	event.ID = r.id()
	r.webhookEvents[event.StripeEventID] = event
	return true, event, nil
}

func (r *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range r.webhookEvents {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeProvider serves canned customer and price lookups and counts calls so
// cache-hit behavior can be asserted.
type fakeProvider struct {
	customers map[string]*ProviderCustomer
	prices    map[string]*ProviderPrice

	customerCalls int
	priceCalls    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		customers: make(map[string]*ProviderCustomer),
		prices:    make(map[string]*ProviderPrice),
	}
}

func (p *fakeProvider) GetCustomer(ctx context.Context, customerID string) (*ProviderCustomer, error) {
	p.customerCalls++
	if c, ok := p.customers[customerID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no such customer: %s", customerID)
}

func (p *fakeProvider) GetPrice(ctx context.Context, priceID string) (*ProviderPrice, error) {
	p.priceCalls++
	if pr, ok := p.prices[priceID]; ok {
		return pr, nil
	}
	return nil, fmt.Errorf("no such price: %s", priceID)
}
