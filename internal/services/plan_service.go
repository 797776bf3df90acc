package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
)

var ErrStorageUnavailable = errors.New("storage service is not configured")

const planFolder = "workout_plans"

type workoutPlanStore interface {
	Create(ctx context.Context, input repository.CreateWorkoutPlanInput) (*models.WorkoutPlan, error)
	GetByID(ctx context.Context, planID int64) (*models.WorkoutPlan, error)
	ListDetailed(ctx context.Context) ([]models.WorkoutPlanDetail, error)
	ListByAssignee(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error)
	UpdatePartial(ctx context.Context, planID int64, input repository.UpdateWorkoutPlanInput) (*models.WorkoutPlan, error)
	Delete(ctx context.Context, planID int64) error
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type PlanService struct {
	planRepo       workoutPlanStore
	userRepo       userReader
	storageService StorageService
	logger         zerolog.Logger
}

func NewPlanService(
	planRepo workoutPlanStore,
	userRepo userReader,
	storageService StorageService,
	logger zerolog.Logger,
) *PlanService {
	return &PlanService{
		planRepo:       planRepo,
		userRepo:       userRepo,
		storageService: storageService,
		logger:         logger,
	}
}

type CreatePlanInput struct {
	Title       string
	Description *string
	AssignedTo  int64
	File        io.Reader
	Filename    string
}

type UpdatePlanInput struct {
	Title       *string
	Description *string
	AssignedTo  *int64
	File        io.Reader
	Filename    string
}

// CreatePlan uploads the plan document and persists the record. Upload and
// insert are not covered by one transaction, so a failed insert triggers a
// compensating delete of the uploaded object.
func (s *PlanService) CreatePlan(ctx context.Context, adminID int64, input CreatePlanInput) (*models.WorkoutPlan, error) {
	if s.storageService == nil {
		return nil, ErrStorageUnavailable
	}
	if adminID <= 0 || input.AssignedTo <= 0 || input.File == nil {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			return nil, ErrInvalidInput
		}
		description = &trimmed
	}

	if err := s.requireMember(ctx, input.AssignedTo); err != nil {
		return nil, err
	}

	fileURL, err := s.storageService.UploadFile(ctx, input.File, buildPlanFilename(input.Filename), planFolder)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.Create(ctx, repository.CreateWorkoutPlanInput{
		Title:       title,
		Description: description,
		FileURL:     fileURL,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  adminID,
	})
	if err != nil {
		if cleanupErr := s.storageService.DeleteFile(ctx, fileURL); cleanupErr != nil {
			s.logger.Error().
				Err(cleanupErr).
				Str("file_url", fileURL).
				Msg("failed to roll back orphaned plan upload")
		}
		return nil, err
	}

	return plan, nil
}

// UpdatePlan patches the record, replacing the stored document first when a
// new file is supplied. The superseded object is deleted best-effort after
// the row update succeeds.
func (s *PlanService) UpdatePlan(ctx context.Context, planID int64, input UpdatePlanInput) (*models.WorkoutPlan, error) {
	if planID <= 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if input.AssignedTo != nil {
		if err := s.requireMember(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	patch := repository.UpdateWorkoutPlanInput{
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
	}

	if input.File != nil {
		if s.storageService == nil {
			return nil, ErrStorageUnavailable
		}
		fileURL, err := s.storageService.UploadFile(ctx, input.File, buildPlanFilename(input.Filename), planFolder)
		if err != nil {
			return nil, err
		}
		patch.FileURL = &fileURL
	}

	plan, err := s.planRepo.UpdatePartial(ctx, planID, patch)
	if err != nil {
		if patch.FileURL != nil {
			if cleanupErr := s.storageService.DeleteFile(ctx, *patch.FileURL); cleanupErr != nil {
				s.logger.Error().
					Err(cleanupErr).
					Str("file_url", *patch.FileURL).
					Msg("failed to roll back replacement plan upload")
			}
		}
		return nil, err
	}

	if patch.FileURL != nil && existing.FileURL != "" && existing.FileURL != *patch.FileURL {
		if err := s.storageService.DeleteFile(ctx, existing.FileURL); err != nil {
			s.logger.Warn().
				Err(err).
				Str("file_url", existing.FileURL).
				Msg("failed to delete superseded plan file")
		}
	}

	return plan, nil
}

// DeletePlan removes the stored document best-effort, then always removes
// the record. A failed file delete is logged, not surfaced.
func (s *PlanService) DeletePlan(ctx context.Context, planID int64) error {
	if planID <= 0 {
		return ErrInvalidInput
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	if plan.FileURL != "" && s.storageService != nil {
		if err := s.storageService.DeleteFile(ctx, plan.FileURL); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("plan_id", planID).
				Str("file_url", plan.FileURL).
				Msg("failed to delete plan file")
		}
	}

	return s.planRepo.Delete(ctx, planID)
}

func (s *PlanService) ListPlans(ctx context.Context) ([]models.WorkoutPlanDetail, error) {
	return s.planRepo.ListDetailed(ctx)
}

func (s *PlanService) ListForMember(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error) {
	return s.planRepo.ListByAssignee(ctx, memberID)
}

// GetDownloadURL returns a signed URL for the plan document. Admins can fetch
// any plan; members only their own.
func (s *PlanService) GetDownloadURL(ctx context.Context, actorID int64, role string, planID int64) (string, error) {
	if s.storageService == nil {
		return "", ErrStorageUnavailable
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return "", err
	}
	if role != models.RoleAdmin && plan.AssignedTo != actorID {
		return "", ErrForbidden
	}

	return s.storageService.GetSignedURL(ctx, plan.FileURL)
}

func (s *PlanService) requireMember(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidInput
		}
		return err
	}
	if user.Role != models.RoleMember {
		return ErrInvalidInput
	}
	return nil
}

func buildPlanFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" {
		ext = ".pdf"
	}
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}
