package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/repository"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/database"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/session"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/usercontext"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/utils"
)

type updateProfileRequest struct {
	Name               *string  `json:"name"`
	Bio                *string  `json:"bio"`
	AvatarURL          *string  `json:"avatar_url"`
	Handicap           *float64 `json:"handicap"`
	HomeCourse         *string  `json:"home_course"`
	NotifyOnApproval   *bool    `json:"notify_on_approval"`
	NotifyOnNewCourses *bool    `json:"notify_on_new_courses"`
	PublicScorecard    *bool    `json:"public_scorecard"`
}

// HandleGetAccount returns the logged-in member's account including the
// membership tier and the currently active subscription, if any.
func HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
	}

	profile, err := models.GetOrCreateProfile(database.GetDB(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	response := fiber.Map{
		"user":       user,
		"tier":       profile.Tier,
		"profile":    profile,
		"avatar_url": utils.AvatarOrGravatar(user.AvatarURL, user.Email),
	}

	// Billing state is soft here: a read failure must not break the page.
	if sub, err := repos.Subscription.GetActiveByUserID(user.ID); err == nil {
		response["subscription"] = fiber.Map{
			"status":               sub.Status,
			"tier":                 sub.Tier,
			"cancel_at_period_end": sub.CancelAtPeriodEnd,
			"current_period_end":   formatTimePtr(sub.CurrentPeriodEnd),
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	return c.JSON(response)
}

// HandleUpdateProfile applies partial updates to the account and profile.
// Only fields present in the body change.
func HandleUpdateProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Handicap != nil {
		user.Handicap = req.Handicap
	}
	if req.HomeCourse != nil {
		user.HomeCourse = *req.HomeCourse
	}

	if err := user.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repos.User.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save profile"})
	}

	profile, err := models.GetOrCreateProfile(database.GetDB(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	changed := false
	if req.NotifyOnApproval != nil {
		profile.NotifyOnApproval = *req.NotifyOnApproval
		changed = true
	}
	if req.NotifyOnNewCourses != nil {
		profile.NotifyOnNewCourses = *req.NotifyOnNewCourses
		changed = true
	}
	if req.PublicScorecard != nil {
		profile.PublicScorecard = *req.PublicScorecard
		changed = true
	}
	if changed {
		if err := database.GetDB().Save(profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save preferences"})
		}
	}

	if user.Name != userCtx.Username {
		_ = session.SetSessionValue(c, USER_NAME, user.Name)
	}

	return c.JSON(fiber.Map{"user": user, "profile": profile})
}

// HandleGenerateAPIKey issues a fresh API key for the account. The plaintext
// key appears exactly once in this response; only its hash is stored.
func HandleGenerateAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to generate key"})
	}
	apiKey := "pgv_" + hex.EncodeToString(raw)

	profile.APIKeyHash = models.HashAPIKey(apiKey)
	profile.APIKeyLastUsedAt = nil
	if err := database.GetDB().Save(profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save key"})
	}

	return c.JSON(fiber.Map{
		"api_key": apiKey,
		"message": "Store this key now, it will not be shown again",
	})
}

// HandleRevokeAPIKey invalidates the account's API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	profile.APIKeyHash = ""
	profile.APIKeyLastUsedAt = nil
	if err := database.GetDB().Save(profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to revoke key"})
	}

	return c.JSON(fiber.Map{"message": "API key revoked"})
}

// HandleDeleteAccount soft deletes the account after clearing the session.
// Billing rows stay so historical invoices keep their owner.
func HandleDeleteAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	if err := repos.User.Delete(userCtx.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete account"})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}
