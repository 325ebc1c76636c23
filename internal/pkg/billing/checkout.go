package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// handleCheckoutCompleted links the provider customer created during checkout
// to the local user referenced in the session. The link is create-once: a
// session for an already-linked user changes nothing, even if the provider
// email has drifted.
func (d *Dispatcher) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) Result {
	var session checkoutSessionPayload
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return failure(fmt.Sprintf("decode checkout session: %v", err))
	}

	userID, ok := sessionUserID(session)
	if !ok {
		return failure("checkout session missing user reference in metadata")
	}
	if strings.TrimSpace(session.Customer) == "" {
		return failure("checkout session missing customer id")
	}

	_, err := d.repo.GetCustomerByUserID(userID)
	if err == nil {
		return success("customer already linked")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(fmt.Sprintf("customer lookup failed: %v", err))
	}

	email := strings.TrimSpace(session.CustomerEmail)
	if email == "" {
		email = strings.TrimSpace(session.CustomerDetails.Email)
	}
	if email == "" {
		cust, err := d.provider.GetCustomer(ctx, session.Customer)
		if err != nil {
			return failure(fmt.Sprintf("fetch provider customer: %v", err))
		}
		email = cust.Email
	}

	customer := &models.Customer{
		UserID:           userID,
		StripeCustomerID: strings.TrimSpace(session.Customer),
		Email:            email,
	}
	if err := d.repo.CreateCustomer(customer); err != nil {
		return failure(fmt.Sprintf("create customer record: %v", err))
	}
	return success("customer linked")
}

// sessionUserID extracts the internal user reference carried in the checkout
// session. Metadata wins over client_reference_id.
func sessionUserID(session checkoutSessionPayload) (uint, bool) {
	ref := ""
	if session.Metadata != nil {
		ref = strings.TrimSpace(session.Metadata["user_id"])
	}
	if ref == "" {
		ref = strings.TrimSpace(session.ClientReferenceID)
	}
	if ref == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(ref, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
