package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Profile stores per-user membership state and preferences. The Tier field is
// a denormalized copy of the user's current subscription tier and is
// maintained by the billing reconciliation as a side effect of subscription
// upserts.
type Profile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex" json:"user_id"`
	Tier               string         `gorm:"type:varchar(50);default:'free';index" json:"tier"`
	NotifyOnApproval   bool           `gorm:"default:true" json:"notify_on_approval"`
	NotifyOnNewCourses bool           `gorm:"default:true" json:"notify_on_new_courses"`
	PublicScorecard    bool           `gorm:"default:false" json:"public_scorecard"`
	APIKeyHash         string         `gorm:"type:varchar(64);index;default:null" json:"-"`
	APIKeyLastUsedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// HashAPIKey returns the hex digest under which API keys are stored.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// GetOrCreateProfile returns existing profile or creates defaults
func GetOrCreateProfile(db *gorm.DB, userID uint) (*Profile, error) {
	var p Profile
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			p = Profile{UserID: userID, Tier: "free", NotifyOnApproval: true, NotifyOnNewCourses: true}
			if err := db.Create(&p).Error; err != nil {
				return nil, err
			}
			return &p, nil
		}
		return nil, err
	}
	return &p, nil
}
