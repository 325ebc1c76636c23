package moderation

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

type fakeContributionRepo struct {
	byUUID map[string]*models.Contribution
}

func (r *fakeContributionRepo) Create(c *models.Contribution) error {
	r.byUUID[c.UUID] = c
	return nil
}

func (r *fakeContributionRepo) GetByID(id uint) (*models.Contribution, error) {
	for _, c := range r.byUUID {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeContributionRepo) GetByUUID(uuid string) (*models.Contribution, error) {
	if c, ok := r.byUUID[uuid]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeContributionRepo) GetByUserID(userID uint, offset, limit int) ([]models.Contribution, error) {
	return nil, nil
}

func (r *fakeContributionRepo) GetPending(offset, limit int) ([]models.Contribution, error) {
	return nil, nil
}

func (r *fakeContributionRepo) GetApproved(kind string, offset, limit int) ([]models.Contribution, error) {
	return nil, nil
}

func (r *fakeContributionRepo) Update(c *models.Contribution) error {
	r.byUUID[c.UUID] = c
	return nil
}

func (r *fakeContributionRepo) Count() (int64, error)        { return int64(len(r.byUUID)), nil }
func (r *fakeContributionRepo) CountPending() (int64, error) { return 0, nil }
func (r *fakeContributionRepo) CountByUserSince(userID uint, since time.Time) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (r *fakeUserRepo) Create(u *models.User) error { return nil }
func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) GetByActivationToken(token string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error) {
	return nil, nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) Update(u *models.User) error                 { return nil }
func (r *fakeUserRepo) Delete(id uint) error                        { return nil }
func (r *fakeUserRepo) List(offset, limit int) ([]models.User, error) { return nil, nil }
func (r *fakeUserRepo) Count() (int64, error)                       { return 0, nil }
func (r *fakeUserRepo) Search(query string) ([]models.User, error)  { return nil, nil }

type sentMail struct {
	to       string
	title    string
	approved bool
	note     string
}

func newModerationFixture(mailErr error) (*Service, *fakeContributionRepo, *[]sentMail) {
	contributions := &fakeContributionRepo{byUUID: map[string]*models.Contribution{
		"uuid-1": {
			ID:     1,
			UUID:   "uuid-1",
			UserID: 7,
			Title:  "Lag putting drill",
			Status: models.ContributionStatusPending,
		},
	}}
	users := &fakeUserRepo{users: map[uint]*models.User{
		7: {ID: 7, Name: "Jordan", Email: "jordan@example.com"},
	}}

	var sent []sentMail
	mailer := func(to, name, title string, approved bool, note string) error {
		sent = append(sent, sentMail{to: to, title: title, approved: approved, note: note})
		return mailErr
	}

	return NewServiceWithMailer(contributions, users, mailer), contributions, &sent
}

func TestApprovePendingContribution(t *testing.T) {
	svc, contributions, sent := newModerationFixture(nil)

	decided, err := svc.Approve("uuid-1", 99, "solid drill")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != models.ContributionStatusApproved {
		t.Errorf("status = %q, want approved", decided.Status)
	}
	if decided.ReviewedBy == nil || *decided.ReviewedBy != 99 {
		t.Error("reviewer id not recorded")
	}
	if decided.ReviewedAt == nil {
		t.Error("review timestamp not recorded")
	}
	if contributions.byUUID["uuid-1"].Status != models.ContributionStatusApproved {
		t.Error("decision not persisted")
	}

	if len(*sent) != 1 {
		t.Fatalf("sent mails = %d, want 1", len(*sent))
	}
	m := (*sent)[0]
	if m.to != "jordan@example.com" || !m.approved || m.note != "solid drill" {
		t.Errorf("unexpected mail: %+v", m)
	}
}

func TestRejectPendingContribution(t *testing.T) {
	svc, _, sent := newModerationFixture(nil)

	decided, err := svc.Reject("uuid-1", 99, "duplicate of an existing tip")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.Status != models.ContributionStatusRejected {
		t.Errorf("status = %q, want rejected", decided.Status)
	}
	if len(*sent) != 1 || (*sent)[0].approved {
		t.Error("rejection mail not sent")
	}
}

func TestSecondDecisionRejected(t *testing.T) {
	svc, _, sent := newModerationFixture(nil)

	if _, err := svc.Approve("uuid-1", 99, ""); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if _, err := svc.Reject("uuid-1", 99, ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second decision err = %v, want ErrAlreadyDecided", err)
	}
	if len(*sent) != 1 {
		t.Errorf("sent mails = %d, want 1", len(*sent))
	}
}

func TestDecisionSurvivesMailFailure(t *testing.T) {
	svc, contributions, _ := newModerationFixture(errors.New("smtp down"))

	if _, err := svc.Approve("uuid-1", 99, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if contributions.byUUID["uuid-1"].Status != models.ContributionStatusApproved {
		t.Error("decision must persist even when notification fails")
	}
}

func TestDecisionUnknownContribution(t *testing.T) {
	svc, _, _ := newModerationFixture(nil)

	if _, err := svc.Approve("uuid-missing", 99, ""); err == nil {
		t.Fatal("unknown contribution must error")
	}
}
