package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/services"
)

type stubEnrollmentService struct {
	enrollErr    error
	unenrollErr  error
	available    []models.ClassAvailability
	mine         []models.Class
	listErr      error
	lastClassID  int64
	lastMemberID int64
}

func (s *stubEnrollmentService) Enroll(_ context.Context, classID, memberID int64) error {
	s.lastClassID = classID
	s.lastMemberID = memberID
	return s.enrollErr
}

func (s *stubEnrollmentService) Unenroll(_ context.Context, classID, memberID int64) error {
	s.lastClassID = classID
	s.lastMemberID = memberID
	return s.unenrollErr
}

func (s *stubEnrollmentService) ListAvailable(_ context.Context) ([]models.ClassAvailability, error) {
	return s.available, s.listErr
}

func (s *stubEnrollmentService) ListMine(_ context.Context, _ int64) ([]models.Class, error) {
	return s.mine, s.listErr
}

type stubMemberPlans struct {
	plans []models.WorkoutPlan
	err   error
}

func (s *stubMemberPlans) ListForMember(_ context.Context, _ int64) ([]models.WorkoutPlan, error) {
	return s.plans, s.err
}

func newEnrollmentTestApp(service *stubEnrollmentService) *fiber.App {
	handler := NewEnrollmentHandler(service, &stubMemberPlans{})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", models.RoleMember)
		c.Locals("user_id", int64(42))
		return c.Next()
	})
	app.Put("/api/member/classes/:id/enroll", handler.Enroll)
	app.Delete("/api/member/classes/:id/enroll", handler.Unenroll)
	app.Get("/api/member/classes", handler.ListAvailableClasses)
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestEnrollSucceeds(t *testing.T) {
	service := &stubEnrollmentService{}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/member/classes/7/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["success"] != true {
		t.Errorf("expected success envelope, got %v", body)
	}
	if service.lastClassID != 7 || service.lastMemberID != 42 {
		t.Errorf("expected enroll(7, 42), got enroll(%d, %d)", service.lastClassID, service.lastMemberID)
	}
}

func TestEnrollFullClassReturnsBadRequest(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: services.ErrClassFull}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/member/classes/7/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["error"] != "Class is full" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestEnrollDuplicateReturnsBadRequest(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: services.ErrAlreadyEnrolled}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/member/classes/7/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["error"] != "Already enrolled in this class" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestEnrollMissingClassReturnsNotFound(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: pgx.ErrNoRows}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/member/classes/7/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEnrollInvalidClassID(t *testing.T) {
	service := &stubEnrollmentService{}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/member/classes/abc/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUnenrollNotEnrolledReturnsBadRequest(t *testing.T) {
	service := &stubEnrollmentService{unenrollErr: services.ErrNotEnrolled}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/member/classes/7/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListAvailableClassesIncludesCounts(t *testing.T) {
	service := &stubEnrollmentService{
		available: []models.ClassAvailability{
			{Class: models.Class{ID: 1, Name: "Morning Yoga", Capacity: 10}, EnrolledCount: 3},
		},
	}
	app := newEnrollmentTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/member/classes", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	data, ok := body["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("expected one class, got %v", body["data"])
	}
	class := data[0].(map[string]any)
	if class["enrolled_count"] != float64(3) {
		t.Errorf("expected enrolled_count 3, got %v", class["enrolled_count"])
	}
}
