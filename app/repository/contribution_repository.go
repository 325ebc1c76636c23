package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// contributionRepository implements the ContributionRepository interface
type contributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new contribution repository instance
func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(contribution *models.Contribution) error {
	return r.db.Create(contribution).Error
}

func (r *contributionRepository) GetByID(id uint) (*models.Contribution, error) {
	var c models.Contribution
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contributionRepository) GetByUUID(uuid string) (*models.Contribution, error) {
	var c models.Contribution
	if err := r.db.Where("uuid = ?", uuid).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contributionRepository) GetByUserID(userID uint, offset, limit int) ([]models.Contribution, error) {
	var list []models.Contribution
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

// GetPending returns undecided submissions, oldest first so the review queue
// is worked in arrival order.
func (r *contributionRepository) GetPending(offset, limit int) ([]models.Contribution, error) {
	var list []models.Contribution
	err := r.db.Where("status = ?", models.ContributionStatusPending).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *contributionRepository) GetApproved(kind string, offset, limit int) ([]models.Contribution, error) {
	query := r.db.Where("status = ?", models.ContributionStatusApproved)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var list []models.Contribution
	err := query.Order("reviewed_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *contributionRepository) Update(contribution *models.Contribution) error {
	return r.db.Save(contribution).Error
}

func (r *contributionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Contribution{}).Count(&count).Error
	return count, err
}

func (r *contributionRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.Contribution{}).
		Where("status = ?", models.ContributionStatusPending).
		Count(&count).Error
	return count, err
}

// CountByUserSince backs the per-tier submission quota.
func (r *contributionRepository) CountByUserSince(userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Contribution{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
