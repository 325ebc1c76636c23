package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/repository"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/cache"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/mediastore"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/moderation"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/ratelimit"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/upload"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/usercontext"
)

const (
	// submitBurstLimit caps submissions per user inside submitBurstWindow,
	// independent of the monthly tier budget.
	submitBurstLimit  = 5
	submitBurstWindow = time.Hour
)

var (
	contributionMu sync.Mutex
	submitLimiter  *ratelimit.Limiter
	mediaClient    *mediastore.Client
	mediaConfig    *mediastore.Config
	mediaTried     bool
)

func getSubmitLimiter() *ratelimit.Limiter {
	contributionMu.Lock()
	defer contributionMu.Unlock()

	if submitLimiter == nil {
		var store ratelimit.Store
		if client := cache.GetClient(); client != nil {
			store = ratelimit.NewRedisStore(client, "ratelimit:contrib")
		} else {
			store = ratelimit.NewMemoryStore()
		}
		submitLimiter = ratelimit.NewLimiter(store, submitBurstWindow)
	}
	return submitLimiter
}

// SetSubmitLimiter swaps the limiter; used by tests.
func SetSubmitLimiter(l *ratelimit.Limiter) {
	contributionMu.Lock()
	defer contributionMu.Unlock()
	submitLimiter = l
}

// getMediaClient initializes the attachment store once. A nil return means
// attachments are disabled or unreachable; submissions still work without
// files.
func getMediaClient() (*mediastore.Client, *mediastore.Config) {
	contributionMu.Lock()
	defer contributionMu.Unlock()

	if !mediaTried {
		mediaTried = true
		cfg, err := mediastore.LoadConfig()
		if err != nil {
			log.Printf("media store config invalid: %v", err)
			return nil, nil
		}
		mediaConfig = cfg
		if cfg.IsEnabled() {
			client, err := mediastore.NewClient(cfg)
			if err != nil {
				log.Printf("media store unavailable: %v", err)
			} else {
				mediaClient = client
			}
		}
	}
	return mediaClient, mediaConfig
}

// HandleSubmitContribution accepts a community submission as multipart form
// data with an optional attachment. Two limits apply: a short burst window
// and the monthly budget of the member's tier.
func HandleSubmitContribution(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	limiter := getSubmitLimiter()
	allowed, err := limiter.Allow(c.Context(), fmt.Sprintf("submit:%d", userCtx.UserID), submitBurstLimit)
	if err != nil {
		log.Printf("rate limiter error for user %d: %v", userCtx.UserID, err)
	} else if !allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited", "message": "Too many submissions, slow down"})
	}

	repos := repository.GetGlobalRepositories()

	tier := entitlements.Normalize(userCtx.Tier)
	budget := entitlements.MonthlySubmissionLimit(tier)
	since := time.Now().AddDate(0, 0, -30)
	used, err := repos.Contribution.CountByUserSince(userCtx.UserID, since)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check submission budget"})
	}
	if used >= int64(budget) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "quota_exceeded",
			"message": fmt.Sprintf("Monthly submission limit of %d reached for the %s tier", budget, tier),
		})
	}

	kind := strings.TrimSpace(c.FormValue("kind", models.ContributionKindGeneral))
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	linkURL := strings.TrimSpace(c.FormValue("link_url"))

	contribution, err := models.NewContribution(userCtx.UserID, kind, title, content, linkURL)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader != nil {
		key, uploadErr := storeAttachment(c, contribution.UUID, fileHeader)
		if uploadErr != nil {
			return attachmentError(c, uploadErr)
		}
		contribution.AttachmentKey = key
	}

	if err := repos.Contribution.Create(contribution); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save contribution"})
	}

	remaining := budget - int(used) - 1
	if remaining < 0 {
		remaining = 0
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"contribution":       contribution,
		"remaining_in_month": remaining,
	})
}

var errAttachmentsUnavailable = errors.New("attachment uploads are not available")

// storeAttachment validates and uploads the form file, returning the object
// key.
func storeAttachment(c *fiber.Ctx, contributionUUID string, fileHeader *multipart.FileHeader) (string, error) {
	client, cfg := getMediaClient()
	if client == nil {
		return "", errAttachmentsUnavailable
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return "", fmt.Errorf("read attachment: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind attachment: %w", err)
	}

	if _, err := upload.ValidateAttachment(fileHeader.Filename, fileHeader.Size, head[:n]); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	now := time.Now()
	key := cfg.AttachmentKey(contributionUUID, ext, now.Year(), int(now.Month()))

	if _, err := client.Upload(c.Context(), key, file, fileHeader.Size, mediastore.ContentTypeForExtension(ext)); err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}

	return key, nil
}

func attachmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errAttachmentsUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "attachments_unavailable", "message": "Attachment uploads are not available"})
	case errors.Is(err, upload.ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "attachment_too_large", "message": "Attachment exceeds the 25 MB limit"})
	case errors.Is(err, upload.ErrUnsupportedType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported_type", "message": "Unsupported attachment type"})
	default:
		log.Printf("attachment upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store attachment"})
	}
}

// HandleListApprovedContributions is the public community feed. An optional
// kind filter narrows the list.
func HandleListApprovedContributions(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 20, 50)
	kind := strings.TrimSpace(c.Query("kind"))

	repos := repository.GetGlobalRepositories()
	contributions, err := repos.Contribution.GetApproved(kind, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load contributions"})
	}

	return c.JSON(fiber.Map{"contributions": contributions})
}

// HandleMyContributions lists the caller's own submissions in every status.
func HandleMyContributions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c, 20, 50)

	repos := repository.GetGlobalRepositories()
	contributions, err := repos.Contribution.GetByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load contributions"})
	}

	return c.JSON(fiber.Map{"contributions": contributions})
}

// HandleGetContribution returns one contribution by its public UUID. Pending
// and rejected submissions are visible only to their author and admins.
func HandleGetContribution(c *fiber.Ctx) error {
	uuid := c.Params("uuid")

	repos := repository.GetGlobalRepositories()
	contribution, err := repos.Contribution.GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Contribution not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load contribution"})
	}

	userCtx := usercontext.GetUserContext(c)
	if contribution.Status != models.ContributionStatusApproved &&
		contribution.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Contribution not found"})
	}

	return c.JSON(fiber.Map{"contribution": contribution})
}

// HandlePendingContributions is the admin review queue, oldest first.
func HandlePendingContributions(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 20, 100)

	repos := repository.GetGlobalRepositories()
	contributions, err := repos.Contribution.GetPending(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load review queue"})
	}

	pending, err := repos.Contribution.CountPending()
	if err != nil {
		pending = int64(len(contributions))
	}

	return c.JSON(fiber.Map{"contributions": contributions, "pending_total": pending})
}

type reviewRequest struct {
	Note string `json:"note"`
}

// HandleApproveContribution approves a pending submission.
func HandleApproveContribution(c *fiber.Ctx) error {
	return decideContribution(c, true)
}

// HandleRejectContribution rejects a pending submission.
func HandleRejectContribution(c *fiber.Ctx) error {
	return decideContribution(c, false)
}

func decideContribution(c *fiber.Ctx, approve bool) error {
	userCtx := usercontext.GetUserContext(c)
	uuid := c.Params("uuid")

	var req reviewRequest
	// Body is optional; an empty note is a valid decision.
	_ = c.BodyParser(&req)

	repos := repository.GetGlobalRepositories()
	service := moderation.NewService(repos.Contribution, repos.User)

	var (
		contribution *models.Contribution
		err          error
	)
	if approve {
		contribution, err = service.Approve(uuid, userCtx.UserID, req.Note)
	} else {
		contribution, err = service.Reject(uuid, userCtx.UserID, req.Note)
	}
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrAlreadyDecided):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_decided", "message": "This contribution has already been reviewed"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Contribution not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save decision"})
		}
	}

	return c.JSON(fiber.Map{"contribution": contribution})
}
