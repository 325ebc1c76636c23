package billing

import (
	"time"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing dispatcher.
type Repository interface {
	GetCustomerByUserID(userID uint) (*models.Customer, error)
	GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error)
	CreateCustomer(customer *models.Customer) error
	SaveCustomer(customer *models.Customer) error

	GetPriceByStripeID(stripePriceID string) (*models.Price, error)
	CreatePriceIfNotExists(price *models.Price) error

	UpsertSubscription(sub *models.Subscription) error
	CancelSubscription(stripeSubscriptionID string, canceledAt time.Time) (*models.Subscription, error)

	CreateInvoiceIfNew(invoice *models.Invoice) (bool, error)

	SetProfileTier(userID uint, tier string) error

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCustomerByUserID(userID uint) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) CreateCustomer(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *gormRepository) SaveCustomer(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *gormRepository) GetPriceByStripeID(stripePriceID string) (*models.Price, error) {
	var p models.Price
	if err := r.db.Where("stripe_price_id = ?", stripePriceID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePriceIfNotExists inserts a lazily-populated price mapping. Two
// concurrent events for the same unseen price id both resolve against the
// provider, but only one row wins; the loser's insert is a no-op.
func (r *gormRepository) CreatePriceIfNotExists(price *models.Price) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_price_id"}},
		DoNothing: true,
	}).Create(price).Error; err != nil {
		return err
	}

	return r.db.Where("stripe_price_id = ?", price.StripePriceID).First(price).Error
}

// UpsertSubscription writes subscription state atomically, keyed on the
// external subscription id. This replaces a lookup-then-branch sequence that
// would race when the provider delivers created and updated events close
// together.
func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"stripe_price_id",
			"tier",
			"status",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"canceled_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(sub).Error
}

// CancelSubscription marks the row canceled and returns it. A zero-row match
// is reported as gorm.ErrRecordNotFound so callers can surface the miss
// instead of treating the no-op as success.
func (r *gormRepository) CancelSubscription(stripeSubscriptionID string, canceledAt time.Time) (*models.Subscription, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": &canceledAt,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var sub models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateInvoiceIfNew appends an invoice row unless the provider event id has
// been recorded before. Returns whether a row was inserted.
func (r *gormRepository) CreateInvoiceIfNew(invoice *models.Invoice) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(invoice)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) SetProfileTier(userID uint, tier string) error {
	profile, err := models.GetOrCreateProfile(r.db, userID)
	if err != nil {
		return err
	}
	if profile.Tier == tier {
		return nil
	}
	profile.Tier = tier
	return r.db.Save(profile).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
