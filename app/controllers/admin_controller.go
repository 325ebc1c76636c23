package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/repository"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/analytics"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/metrics/counter"
)

// HandleAdminDashboard returns the analytics snapshot for the admin overview.
func HandleAdminDashboard(c *fiber.Ctx) error {
	analytics.UpdateCacheIfNeeded()

	return c.JSON(fiber.Map{"stats": analytics.GetSnapshot()})
}

// HandleAdminListUsers pages through all accounts.
func HandleAdminListUsers(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 25, 100)

	repos := repository.GetGlobalRepositories()
	users, err := repos.User.List(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}

	total, err := repos.User.Count()
	if err != nil {
		total = int64(len(users))
	}

	return c.JSON(fiber.Map{"users": users, "total": total})
}

// HandleAdminSearchUsers finds accounts by name or email fragment.
func HandleAdminSearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing search query"})
	}

	repos := repository.GetGlobalRepositories()
	users, err := repos.User.Search(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to search users"})
	}

	return c.JSON(fiber.Map{"query": query, "users": users})
}

type adminUserUpdateRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// HandleAdminUpdateUser changes role or status of an account.
func HandleAdminUpdateUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	var req adminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
	}

	if req.Role != nil {
		switch *req.Role {
		case models.ROLE_USER, models.ROLE_COACH, models.ROLE_ADMIN:
			user.Role = *req.Role
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Unknown role"})
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
			user.Status = *req.Status
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Unknown status"})
		}
	}

	if err := repos.User.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// HandleAdminFlushCounters forces the view counters into the database and
// invalidates the analytics cache.
func HandleAdminFlushCounters(c *fiber.Ctx) error {
	if err := counter.FlushAll(); err != nil {
		log.Printf("counter flush failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to flush counters"})
	}

	analytics.ResetCacheUpdateTimer()

	return c.JSON(fiber.Map{"message": "Counters flushed"})
}
