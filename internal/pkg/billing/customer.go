package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// handleCustomerUpdated refreshes the stored email for a linked customer.
// Customers created outside our checkout flow have no local row; their
// updates are acknowledged and dropped.
func (d *Dispatcher) handleCustomerUpdated(ctx context.Context, event *stripe.Event) Result {
	_ = ctx
	var payload customerPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return failure(fmt.Sprintf("decode customer: %v", err))
	}
	if strings.TrimSpace(payload.ID) == "" {
		return failure("customer payload missing id")
	}

	customer, err := d.repo.GetCustomerByStripeID(payload.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return success("Customer not linked to a user in our system")
		}
		return failure(fmt.Sprintf("customer lookup failed: %v", err))
	}

	customer.Email = strings.TrimSpace(payload.Email)
	if err := d.repo.SaveCustomer(customer); err != nil {
		return failure(fmt.Sprintf("update customer: %v", err))
	}
	return success("customer updated")
}
