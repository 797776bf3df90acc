package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
)

type classAdminStore interface {
	Create(ctx context.Context, input repository.CreateClassInput) (*models.Class, error)
	List(ctx context.Context) ([]models.Class, error)
	EnrolledMembersByClassIDs(ctx context.Context, classIDs []int64) (map[int64][]models.MemberSummary, error)
	UpdatePartial(ctx context.Context, classID int64, input repository.UpdateClassInput) (*models.Class, error)
	Delete(ctx context.Context, classID int64) error
}

// ClassHandler is the admin-facing class CRUD surface.
type ClassHandler struct {
	classes classAdminStore
	stats   statsInvalidator
}

func NewClassHandler(classes classAdminStore, stats statsInvalidator) *ClassHandler {
	return &ClassHandler{classes: classes, stats: stats}
}

// ListClasses includes each class's enrolled-member roster, the projection
// the admin dashboard renders.
func (h *ClassHandler) ListClasses(c *fiber.Ctx) error {
	classes, err := h.classes.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list classes",
		})
	}

	classIDs := make([]int64, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	rosters, err := h.classes.EnrolledMembersByClassIDs(c.Context(), classIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list classes",
		})
	}

	result := make([]models.ClassWithMembers, 0, len(classes))
	for _, class := range classes {
		roster := rosters[class.ID]
		if roster == nil {
			roster = []models.MemberSummary{}
		}
		result = append(result, models.ClassWithMembers{
			Class:           class,
			EnrolledMembers: roster,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

type createClassRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Schedule    string  `json:"schedule"`
	Duration    int     `json:"duration"`
	Capacity    int     `json:"capacity"`
	Instructor  string  `json:"instructor"`
}

func (h *ClassHandler) CreateClass(c *fiber.Ctx) error {
	var req createClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	fields := map[string]string{
		"name":       req.Name,
		"schedule":   req.Schedule,
		"instructor": req.Instructor,
		"duration":   "",
		"capacity":   "",
	}
	if req.Duration != 0 {
		fields["duration"] = strconv.Itoa(req.Duration)
	}
	if req.Capacity != 0 {
		fields["capacity"] = strconv.Itoa(req.Capacity)
	}
	if msg := missingFieldsMessage(fields); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	schedule, err := time.Parse(time.RFC3339, req.Schedule)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "schedule must be an RFC 3339 timestamp",
		})
	}
	if req.Duration < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Duration must be at least 1 minute",
		})
	}
	if req.Capacity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Capacity must be at least 1",
		})
	}

	class, err := h.classes.Create(c.Context(), repository.CreateClassInput{
		Name:            req.Name,
		Description:     req.Description,
		Schedule:        schedule,
		DurationMinutes: req.Duration,
		Capacity:        req.Capacity,
		Instructor:      req.Instructor,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create class",
		})
	}

	h.stats.Invalidate()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    class,
	})
}

type updateClassRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Schedule    *string `json:"schedule"`
	Duration    *int    `json:"duration"`
	Capacity    *int    `json:"capacity"`
	Instructor  *string `json:"instructor"`
}

func (h *ClassHandler) UpdateClass(c *fiber.Ctx) error {
	classID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || classID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid class id",
		})
	}

	var req updateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	input := repository.UpdateClassInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.Duration,
		Capacity:        req.Capacity,
		Instructor:      req.Instructor,
	}

	if req.Schedule != nil {
		schedule, err := time.Parse(time.RFC3339, *req.Schedule)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "schedule must be an RFC 3339 timestamp",
			})
		}
		input.Schedule = &schedule
	}
	if req.Duration != nil && *req.Duration < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Duration must be at least 1 minute",
		})
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Capacity must be at least 1",
		})
	}

	class, err := h.classes.UpdatePartial(c.Context(), classID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Class not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update class",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    class,
	})
}

func (h *ClassHandler) DeleteClass(c *fiber.Ctx) error {
	classID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || classID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid class id",
		})
	}

	if err := h.classes.Delete(c.Context(), classID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Class not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete class",
		})
	}

	h.stats.Invalidate()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}
