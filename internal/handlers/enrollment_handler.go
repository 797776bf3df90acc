package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/services"
)

type enrollmentApplicationService interface {
	Enroll(ctx context.Context, classID, memberID int64) error
	Unenroll(ctx context.Context, classID, memberID int64) error
	ListAvailable(ctx context.Context) ([]models.ClassAvailability, error)
	ListMine(ctx context.Context, memberID int64) ([]models.Class, error)
}

type memberPlanLister interface {
	ListForMember(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error)
}

// EnrollmentHandler is the member-facing surface: browse classes, enroll,
// unenroll, and see assigned plans.
type EnrollmentHandler struct {
	enrollments enrollmentApplicationService
	plans       memberPlanLister
}

func NewEnrollmentHandler(enrollments enrollmentApplicationService, plans memberPlanLister) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, plans: plans}
}

func (h *EnrollmentHandler) ListAvailableClasses(c *fiber.Ctx) error {
	classes, err := h.enrollments.ListAvailable(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list classes",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    classes,
	})
}

func (h *EnrollmentHandler) ListMyClasses(c *fiber.Ctx) error {
	memberID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	classes, err := h.enrollments.ListMine(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list enrolled classes",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    classes,
	})
}

func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	memberID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	classID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || classID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid class id",
		})
	}

	if err := h.enrollments.Enroll(c.Context(), classID, memberID); err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully enrolled in class",
	})
}

func (h *EnrollmentHandler) Unenroll(c *fiber.Ctx) error {
	memberID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	classID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || classID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid class id",
		})
	}

	if err := h.enrollments.Unenroll(c.Context(), classID, memberID); err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully unenrolled from class",
	})
}

func (h *EnrollmentHandler) ListMyPlans(c *fiber.Ctx) error {
	memberID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	plans, err := h.plans.ListForMember(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list workout plans",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plans,
	})
}

func mapEnrollmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrClassFull):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Class is full",
		})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Already enrolled in this class",
		})
	case errors.Is(err, services.ErrNotEnrolled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Not enrolled in this class",
		})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request",
		})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Class not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to process enrollment request",
		})
	}
}
