package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/env"
)

// ProviderCustomer is the subset of a payment-provider customer record the
// reconciliation needs.
type ProviderCustomer struct {
	ID    string
	Email string
}

// ProviderPrice carries a price plus the product details required for tier
// inference.
type ProviderPrice struct {
	ID              string
	ProductID       string
	ProductName     string
	ProductMetadata map[string]string
	Currency        string
	UnitAmount      int64
	Interval        string
}

// Provider is the read-only payment-processor client used when a customer or
// price is not cached locally. Injected so tests can supply fakes.
type Provider interface {
	GetCustomer(ctx context.Context, customerID string) (*ProviderCustomer, error)
	GetPrice(ctx context.Context, priceID string) (*ProviderPrice, error)
}

type stripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a Provider backed by the Stripe API.
func NewStripeProvider(apiKey string) (Provider, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errors.New("stripe api key is required")
	}
	api := &client.API{}
	api.Init(key, nil)
	return &stripeProvider{api: api}, nil
}

// NewStripeProviderFromEnv reads STRIPE_SECRET_KEY.
func NewStripeProviderFromEnv() (Provider, error) {
	return NewStripeProvider(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

func (p *stripeProvider) GetCustomer(ctx context.Context, customerID string) (*ProviderCustomer, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return nil, errors.New("customer id is required")
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx
	cust, err := p.api.Customers.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &ProviderCustomer{ID: cust.ID, Email: cust.Email}, nil
}

func (p *stripeProvider) GetPrice(ctx context.Context, priceID string) (*ProviderPrice, error) {
	id := strings.TrimSpace(priceID)
	if id == "" {
		return nil, errors.New("price id is required")
	}

	params := &stripe.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")
	price, err := p.api.Prices.Get(id, params)
	if err != nil {
		return nil, err
	}

	out := &ProviderPrice{
		ID:         price.ID,
		Currency:   string(price.Currency),
		UnitAmount: price.UnitAmount,
	}
	if price.Recurring != nil {
		out.Interval = string(price.Recurring.Interval)
	}
	if price.Product != nil {
		out.ProductID = price.Product.ID
		out.ProductName = price.Product.Name
		out.ProductMetadata = price.Product.Metadata
	}
	return out, nil
}

// unixToTime converts a provider unix timestamp, treating zero as unset.
func unixToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
