package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContributionStatusPending  = "pending"
	ContributionStatusApproved = "approved"
	ContributionStatusRejected = "rejected"
)

const (
	ContributionKindTip     = "tip"
	ContributionKindDrill   = "drill"
	ContributionKindStory   = "story"
	ContributionKindGear    = "gear_review"
	ContributionKindGeneral = "general"
)

// Contribution is a community submission that passes through moderation
// before it becomes publicly visible.
type Contribution struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Kind          string         `gorm:"type:varchar(30);not null;default:'general'" json:"kind" validate:"oneof=tip drill story gear_review general"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Content       string         `gorm:"type:text;not null" json:"content" validate:"required,min=10,max=20000"`
	LinkURL       string         `gorm:"type:varchar(512);default:''" json:"link_url" validate:"omitempty,url,max=512"`
	AttachmentKey string         `gorm:"type:varchar(512);default:''" json:"attachment_key"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy    *uint          `gorm:"default:null" json:"reviewed_by,omitempty"`
	ReviewNote    string         `gorm:"type:text" json:"review_note"`
	ReviewedAt    *time.Time     `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Contribution) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// NewContribution builds a pending contribution with a fresh public UUID.
func NewContribution(userID uint, kind, title, content, linkURL string) (*Contribution, error) {
	c := &Contribution{
		UUID:    uuid.New().String(),
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Content: content,
		LinkURL: linkURL,
		Status:  ContributionStatusPending,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// IsDecided reports whether the contribution has left the pending state.
func (c *Contribution) IsDecided() bool {
	return c.Status != ContributionStatusPending
}
