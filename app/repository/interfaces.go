package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// ContributionRepository defines the interface for community submissions
type ContributionRepository interface {
	Create(contribution *models.Contribution) error
	GetByID(id uint) (*models.Contribution, error)
	GetByUUID(uuid string) (*models.Contribution, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Contribution, error)
	GetPending(offset, limit int) ([]models.Contribution, error)
	GetApproved(kind string, offset, limit int) ([]models.Contribution, error)
	Update(contribution *models.Contribution) error
	Count() (int64, error)
	CountPending() (int64, error)
	CountByUserSince(userID uint, since time.Time) (int64, error)
}

// SubscriptionRepository exposes read access to synced billing state for
// account and admin views. Writes happen only through the webhook pipeline.
type SubscriptionRepository interface {
	GetActiveByUserID(userID uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetInvoicesByUserID(userID uint, offset, limit int) ([]models.Invoice, error)
	CountByStatus(status string) (int64, error)
	CountByTier(tier string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Contribution ContributionRepository
	Subscription SubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Contribution: NewContributionRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
