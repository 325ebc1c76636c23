package moderation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/repository"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/mail"
)

// ErrAlreadyDecided is returned for a second decision on the same
// contribution. The first decision stands.
var ErrAlreadyDecided = errors.New("contribution already decided")

// DecisionMailer notifies the contributor about a decision. Injected so tests
// can capture sent mail instead of dialing SMTP.
type DecisionMailer func(to, name, title string, approved bool, note string) error

// Service runs the contribution review queue. Submissions enter pending and
// leave through exactly one approve or reject decision.
type Service struct {
	contributions repository.ContributionRepository
	users         repository.UserRepository
	sendDecision  DecisionMailer
}

func NewService(contributions repository.ContributionRepository, users repository.UserRepository) *Service {
	return &Service{
		contributions: contributions,
		users:         users,
		sendDecision:  mail.SendContributionDecisionMail,
	}
}

// NewServiceWithMailer is the test constructor.
func NewServiceWithMailer(contributions repository.ContributionRepository, users repository.UserRepository, mailer DecisionMailer) *Service {
	return &Service{
		contributions: contributions,
		users:         users,
		sendDecision:  mailer,
	}
}

// Approve moves a pending contribution to approved.
func (s *Service) Approve(contributionUUID string, reviewerID uint, note string) (*models.Contribution, error) {
	return s.decide(contributionUUID, reviewerID, note, models.ContributionStatusApproved)
}

// Reject moves a pending contribution to rejected.
func (s *Service) Reject(contributionUUID string, reviewerID uint, note string) (*models.Contribution, error) {
	return s.decide(contributionUUID, reviewerID, note, models.ContributionStatusRejected)
}

func (s *Service) decide(contributionUUID string, reviewerID uint, note string, status string) (*models.Contribution, error) {
	contribution, err := s.contributions.GetByUUID(contributionUUID)
	if err != nil {
		return nil, fmt.Errorf("load contribution: %w", err)
	}
	if contribution.IsDecided() {
		return nil, ErrAlreadyDecided
	}

	now := time.Now()
	contribution.Status = status
	contribution.ReviewedBy = &reviewerID
	contribution.ReviewNote = note
	contribution.ReviewedAt = &now

	if err := s.contributions.Update(contribution); err != nil {
		return nil, fmt.Errorf("save decision: %w", err)
	}

	s.notify(contribution, status == models.ContributionStatusApproved, note)

	return contribution, nil
}

// notify delivers the decision email best effort. The decision is already
// persisted; a mail failure must not roll it back.
func (s *Service) notify(contribution *models.Contribution, approved bool, note string) {
	author, err := s.users.GetByID(contribution.UserID)
	if err != nil {
		log.Printf("[moderation] cannot load author %d for notification: %v", contribution.UserID, err)
		return
	}

	if err := s.sendDecision(author.Email, author.Name, contribution.Title, approved, note); err != nil {
		log.Printf("[moderation] decision mail to %s failed: %v", author.Email, err)
	}
}
