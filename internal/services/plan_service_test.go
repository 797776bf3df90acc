package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
)

type stubPlanRepo struct {
	createResult *models.WorkoutPlan
	createErr    error
	createCalls  int
	lastCreate   repository.CreateWorkoutPlanInput
	getResult    *models.WorkoutPlan
	getErr       error
	listDetailed []models.WorkoutPlanDetail
	listErr      error
	updateResult *models.WorkoutPlan
	updateErr    error
	lastUpdate   repository.UpdateWorkoutPlanInput
	deleteErr    error
	deleteCalls  int
}

func (r *stubPlanRepo) Create(_ context.Context, input repository.CreateWorkoutPlanInput) (*models.WorkoutPlan, error) {
	r.createCalls++
	r.lastCreate = input
	return r.createResult, r.createErr
}

func (r *stubPlanRepo) GetByID(_ context.Context, _ int64) (*models.WorkoutPlan, error) {
	return r.getResult, r.getErr
}

func (r *stubPlanRepo) ListDetailed(_ context.Context) ([]models.WorkoutPlanDetail, error) {
	return r.listDetailed, r.listErr
}

func (r *stubPlanRepo) ListByAssignee(_ context.Context, _ int64) ([]models.WorkoutPlan, error) {
	return nil, r.listErr
}

func (r *stubPlanRepo) UpdatePartial(_ context.Context, _ int64, input repository.UpdateWorkoutPlanInput) (*models.WorkoutPlan, error) {
	r.lastUpdate = input
	return r.updateResult, r.updateErr
}

func (r *stubPlanRepo) Delete(_ context.Context, _ int64) error {
	r.deleteCalls++
	return r.deleteErr
}

type stubStorage struct {
	uploadURL    string
	uploadErr    error
	uploadCalls  int
	lastFilename string
	lastFolder   string
	signedURL    string
	signedErr    error
	deleteErr    error
	deletedURLs  []string
}

func (s *stubStorage) UploadFile(_ context.Context, _ io.Reader, filename string, folder string) (string, error) {
	s.uploadCalls++
	s.lastFilename = filename
	s.lastFolder = folder
	return s.uploadURL, s.uploadErr
}

func (s *stubStorage) DeleteFile(_ context.Context, fileURL string) error {
	s.deletedURLs = append(s.deletedURLs, fileURL)
	return s.deleteErr
}

func (s *stubStorage) GetSignedURL(_ context.Context, _ string) (string, error) {
	return s.signedURL, s.signedErr
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (r *stubUserRepo) GetByID(_ context.Context, _ int64) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.user, nil
}

var planTestTime = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func newPlanService(planRepo *stubPlanRepo, userRepo *stubUserRepo, storage StorageService) *PlanService {
	return NewPlanService(planRepo, userRepo, storage, zerolog.Nop())
}

func TestPlanServiceCreatePlanUploadsAndStoresPlan(t *testing.T) {
	planRepo := &stubPlanRepo{
		createResult: &models.WorkoutPlan{
			ID:           1,
			Title:        "Cut phase",
			FileURL:      "https://storage/workout_plans/plan.pdf",
			AssignedTo:   42,
			AssignedBy:   7,
			AssignedDate: planTestTime,
		},
	}
	userRepo := &stubUserRepo{user: &models.User{ID: 42, Role: models.RoleMember}}
	storage := &stubStorage{uploadURL: "https://storage/workout_plans/plan.pdf"}
	service := newPlanService(planRepo, userRepo, storage)

	plan, err := service.CreatePlan(context.Background(), 7, CreatePlanInput{
		Title:      "Cut phase",
		AssignedTo: 42,
		File:       bytes.NewReader([]byte("pdf-content")),
		Filename:   "plan.pdf",
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.ID != 1 {
		t.Errorf("expected plan id 1, got %d", plan.ID)
	}
	if storage.uploadCalls != 1 {
		t.Errorf("expected one upload, got %d", storage.uploadCalls)
	}
	if storage.lastFolder != "workout_plans" {
		t.Errorf("expected workout_plans folder, got %q", storage.lastFolder)
	}
	if !strings.HasSuffix(storage.lastFilename, ".pdf") {
		t.Errorf("expected .pdf filename, got %q", storage.lastFilename)
	}
	if planRepo.lastCreate.FileURL != storage.uploadURL {
		t.Errorf("expected stored file url %q, got %q", storage.uploadURL, planRepo.lastCreate.FileURL)
	}
	if planRepo.lastCreate.AssignedBy != 7 {
		t.Errorf("expected assigned_by 7, got %d", planRepo.lastCreate.AssignedBy)
	}
}

func TestPlanServiceCreatePlanRequiresFile(t *testing.T) {
	planRepo := &stubPlanRepo{}
	userRepo := &stubUserRepo{user: &models.User{ID: 42, Role: models.RoleMember}}
	storage := &stubStorage{}
	service := newPlanService(planRepo, userRepo, storage)

	_, err := service.CreatePlan(context.Background(), 7, CreatePlanInput{
		Title:      "Cut phase",
		AssignedTo: 42,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if storage.uploadCalls != 0 {
		t.Errorf("expected no upload attempt, got %d", storage.uploadCalls)
	}
	if planRepo.createCalls != 0 {
		t.Errorf("expected no create attempt, got %d", planRepo.createCalls)
	}
}

func TestPlanServiceCreatePlanRejectsNonMemberAssignee(t *testing.T) {
	planRepo := &stubPlanRepo{}
	userRepo := &stubUserRepo{user: &models.User{ID: 3, Role: models.RoleAdmin}}
	storage := &stubStorage{}
	service := newPlanService(planRepo, userRepo, storage)

	_, err := service.CreatePlan(context.Background(), 7, CreatePlanInput{
		Title:      "Cut phase",
		AssignedTo: 3,
		File:       bytes.NewReader([]byte("pdf-content")),
		Filename:   "plan.pdf",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if storage.uploadCalls != 0 {
		t.Errorf("expected no upload attempt, got %d", storage.uploadCalls)
	}
}

func TestPlanServiceCreatePlanRollsBackUploadOnInsertFailure(t *testing.T) {
	planRepo := &stubPlanRepo{createErr: errors.New("insert failed")}
	userRepo := &stubUserRepo{user: &models.User{ID: 42, Role: models.RoleMember}}
	storage := &stubStorage{uploadURL: "https://storage/workout_plans/plan.pdf"}
	service := newPlanService(planRepo, userRepo, storage)

	_, err := service.CreatePlan(context.Background(), 7, CreatePlanInput{
		Title:      "Cut phase",
		AssignedTo: 42,
		File:       bytes.NewReader([]byte("pdf-content")),
		Filename:   "plan.pdf",
	})
	if err == nil || err.Error() != "insert failed" {
		t.Fatalf("expected insert failure, got %v", err)
	}
	if len(storage.deletedURLs) != 1 || storage.deletedURLs[0] != storage.uploadURL {
		t.Errorf("expected compensating delete of %q, got %v", storage.uploadURL, storage.deletedURLs)
	}
}

func TestPlanServiceCreatePlanKeepsPrimaryErrorWhenRollbackFails(t *testing.T) {
	planRepo := &stubPlanRepo{createErr: errors.New("insert failed")}
	userRepo := &stubUserRepo{user: &models.User{ID: 42, Role: models.RoleMember}}
	storage := &stubStorage{
		uploadURL: "https://storage/workout_plans/plan.pdf",
		deleteErr: errors.New("delete failed"),
	}
	service := newPlanService(planRepo, userRepo, storage)

	_, err := service.CreatePlan(context.Background(), 7, CreatePlanInput{
		Title:      "Cut phase",
		AssignedTo: 42,
		File:       bytes.NewReader([]byte("pdf-content")),
		Filename:   "plan.pdf",
	})
	if err == nil || err.Error() != "insert failed" {
		t.Fatalf("expected primary insert error, got %v", err)
	}
}

func TestPlanServiceDeletePlanToleratesFileDeleteFailure(t *testing.T) {
	planRepo := &stubPlanRepo{
		getResult: &models.WorkoutPlan{ID: 5, FileURL: "https://storage/workout_plans/plan.pdf"},
	}
	userRepo := &stubUserRepo{}
	storage := &stubStorage{deleteErr: errors.New("storage down")}
	service := newPlanService(planRepo, userRepo, storage)

	if err := service.DeletePlan(context.Background(), 5); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if planRepo.deleteCalls != 1 {
		t.Errorf("expected record delete despite file failure, got %d calls", planRepo.deleteCalls)
	}
}

func TestPlanServiceDeletePlanMissingPlan(t *testing.T) {
	planRepo := &stubPlanRepo{getErr: pgx.ErrNoRows}
	service := newPlanService(planRepo, &stubUserRepo{}, &stubStorage{})

	err := service.DeletePlan(context.Background(), 5)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestPlanServiceUpdatePlanReplacesFile(t *testing.T) {
	planRepo := &stubPlanRepo{
		getResult:    &models.WorkoutPlan{ID: 5, FileURL: "https://storage/workout_plans/old.pdf"},
		updateResult: &models.WorkoutPlan{ID: 5, FileURL: "https://storage/workout_plans/new.pdf"},
	}
	userRepo := &stubUserRepo{user: &models.User{ID: 42, Role: models.RoleMember}}
	storage := &stubStorage{uploadURL: "https://storage/workout_plans/new.pdf"}
	service := newPlanService(planRepo, userRepo, storage)

	plan, err := service.UpdatePlan(context.Background(), 5, UpdatePlanInput{
		File:     bytes.NewReader([]byte("new-pdf")),
		Filename: "new.pdf",
	})
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if plan.FileURL != "https://storage/workout_plans/new.pdf" {
		t.Errorf("unexpected file url %q", plan.FileURL)
	}
	if planRepo.lastUpdate.FileURL == nil || *planRepo.lastUpdate.FileURL != storage.uploadURL {
		t.Errorf("expected patch with new file url, got %v", planRepo.lastUpdate.FileURL)
	}
	if len(storage.deletedURLs) != 1 || storage.deletedURLs[0] != "https://storage/workout_plans/old.pdf" {
		t.Errorf("expected superseded file delete, got %v", storage.deletedURLs)
	}
}

func TestPlanServiceGetDownloadURLForbiddenForOtherMember(t *testing.T) {
	planRepo := &stubPlanRepo{
		getResult: &models.WorkoutPlan{ID: 5, AssignedTo: 42, FileURL: "https://storage/workout_plans/plan.pdf"},
	}
	storage := &stubStorage{signedURL: "https://storage/signed"}
	service := newPlanService(planRepo, &stubUserRepo{}, storage)

	_, err := service.GetDownloadURL(context.Background(), 99, models.RoleMember, 5)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	url, err := service.GetDownloadURL(context.Background(), 42, models.RoleMember, 5)
	if err != nil {
		t.Fatalf("GetDownloadURL: %v", err)
	}
	if url != "https://storage/signed" {
		t.Errorf("unexpected signed url %q", url)
	}
}
