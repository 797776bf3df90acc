package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/services"
)

const maxPlanSizeBytes = 5 * 1024 * 1024

type planApplicationService interface {
	CreatePlan(ctx context.Context, adminID int64, input services.CreatePlanInput) (*models.WorkoutPlan, error)
	UpdatePlan(ctx context.Context, planID int64, input services.UpdatePlanInput) (*models.WorkoutPlan, error)
	DeletePlan(ctx context.Context, planID int64) error
	ListPlans(ctx context.Context) ([]models.WorkoutPlanDetail, error)
	GetDownloadURL(ctx context.Context, actorID int64, role string, planID int64) (string, error)
}

type PlanHandler struct {
	service planApplicationService
	stats   statsInvalidator
}

func NewPlanHandler(service planApplicationService, stats statsInvalidator) *PlanHandler {
	return &PlanHandler{service: service, stats: stats}
}

func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.service.ListPlans(c.Context())
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plans,
	})
}

func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	adminID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	assignedToRaw := strings.TrimSpace(c.FormValue("assignedTo"))

	fileHeader, fileErr := c.FormFile("file")
	fileField := ""
	if fileErr == nil {
		fileField = fileHeader.Filename
	}

	if msg := missingFieldsMessage(map[string]string{
		"title":      title,
		"assignedTo": assignedToRaw,
		"file":       fileField,
	}); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	assignedTo, err := strconv.ParseInt(assignedToRaw, 10, 64)
	if err != nil || assignedTo <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "assignedTo must be a positive integer",
		})
	}

	if err := validatePlanFile(fileHeader); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var description *string
	if rawDescription := c.FormValue("description"); rawDescription != "" {
		description = &rawDescription
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to open file",
		})
	}
	defer file.Close()

	plan, err := h.service.CreatePlan(c.Context(), adminID, services.CreatePlanInput{
		Title:       title,
		Description: description,
		AssignedTo:  assignedTo,
		File:        file,
		Filename:    fileHeader.Filename,
	})
	if err != nil {
		return mapPlanError(c, err)
	}

	h.stats.Invalidate()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

func (h *PlanHandler) UpdatePlan(c *fiber.Ctx) error {
	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid plan id",
		})
	}

	input := services.UpdatePlanInput{}

	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		input.Title = &title
	}
	if description := c.FormValue("description"); description != "" {
		input.Description = &description
	}
	if assignedToRaw := strings.TrimSpace(c.FormValue("assignedTo")); assignedToRaw != "" {
		assignedTo, err := strconv.ParseInt(assignedToRaw, 10, 64)
		if err != nil || assignedTo <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "assignedTo must be a positive integer",
			})
		}
		input.AssignedTo = &assignedTo
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		if err := validatePlanFile(fileHeader); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to open file",
			})
		}
		defer file.Close()
		input.File = file
		input.Filename = fileHeader.Filename
	}

	plan, err := h.service.UpdatePlan(c.Context(), planID, input)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

func (h *PlanHandler) DeletePlan(c *fiber.Ctx) error {
	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid plan id",
		})
	}

	if err := h.service.DeletePlan(c.Context(), planID); err != nil {
		return mapPlanError(c, err)
	}

	h.stats.Invalidate()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}

func (h *PlanHandler) DownloadPlan(c *fiber.Ctx) error {
	id, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}
	role, _ := c.Locals("role").(string)

	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid plan id",
		})
	}

	signedURL, err := h.service.GetDownloadURL(c.Context(), id, role, planID)
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"download_url":       signedURL,
			"expires_in_seconds": 3600,
		},
	})
}

// validatePlanFile rejects anything that is not a reasonably sized PDF
// before any upload work starts.
func validatePlanFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size <= 0 {
		return errors.New("file is empty")
	}
	if fileHeader.Size > maxPlanSizeBytes {
		return errors.New("file exceeds 5MB limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if contentType != "application/pdf" && ext != ".pdf" {
		return errors.New("Only PDF files are allowed")
	}
	return nil
}

func mapPlanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Forbidden",
		})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request",
		})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Storage service is not configured",
		})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Workout plan not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to process workout plan request",
		})
	}
}
