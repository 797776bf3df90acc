package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
)

type stubMemberStore struct {
	members     []models.User
	getByEmail  *models.User
	getErr      error
	createErr   error
	created     *models.User
	updated     *models.User
	updateErr   error
	deleteErr   error
	deleteCalls int
}

func (s *stubMemberStore) ListMembers(_ context.Context) ([]models.User, error) {
	return s.members, nil
}

func (s *stubMemberStore) CreateUser(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = 101
	s.created = user
	return nil
}

func (s *stubMemberStore) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return s.getByEmail, s.getErr
}

func (s *stubMemberStore) UpdatePartial(_ context.Context, _ int64, _ repository.UpdateUserInput) (*models.User, error) {
	return s.updated, s.updateErr
}

func (s *stubMemberStore) Delete(_ context.Context, _ int64) error {
	s.deleteCalls++
	return s.deleteErr
}

func newMemberTestApp(store *stubMemberStore, stats *stubStats) *fiber.App {
	handler := NewMemberHandler(store, stats)

	app := fiber.New()
	app.Get("/api/admin/members", handler.ListMembers)
	app.Post("/api/admin/members", handler.CreateMember)
	app.Put("/api/admin/members/:id", handler.UpdateMember)
	app.Delete("/api/admin/members/:id", handler.DeleteMember)
	return app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateMemberSucceeds(t *testing.T) {
	store := &stubMemberStore{getErr: pgx.ErrNoRows}
	stats := &stubStats{}
	app := newMemberTestApp(store, stats)

	req := jsonRequest(t, http.MethodPost, "/api/admin/members", map[string]string{
		"name":     "Jordan Miles",
		"email":    "Jordan@Example.com",
		"password": "secret123",
	})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.created == nil {
		t.Fatal("expected CreateUser to be called")
	}
	if store.created.Email != "jordan@example.com" {
		t.Errorf("expected lowercased email, got %q", store.created.Email)
	}
	if store.created.Role != models.RoleMember {
		t.Errorf("expected member role, got %q", store.created.Role)
	}
	if store.created.PasswordHash == "secret123" {
		t.Error("expected password to be hashed")
	}
	if stats.invalidations != 1 {
		t.Errorf("expected stats invalidation, got %d", stats.invalidations)
	}
}

func TestCreateMemberMissingFields(t *testing.T) {
	store := &stubMemberStore{}
	app := newMemberTestApp(store, &stubStats{})

	req := jsonRequest(t, http.MethodPost, "/api/admin/members", map[string]string{
		"name": "Jordan Miles",
	})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["error"] != "Please provide email, password" {
		t.Errorf("unexpected error message %v", body["error"])
	}
	if store.created != nil {
		t.Error("expected no user created")
	}
}

func TestCreateMemberDuplicateEmail(t *testing.T) {
	store := &stubMemberStore{
		getByEmail: &models.User{ID: 1, Email: "jordan@example.com"},
	}
	app := newMemberTestApp(store, &stubStats{})

	req := jsonRequest(t, http.MethodPost, "/api/admin/members", map[string]string{
		"name":     "Jordan Miles",
		"email":    "jordan@example.com",
		"password": "secret123",
	})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["error"] != "User already exists with this email" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestCreateMemberDuplicateEmailRace(t *testing.T) {
	// The precheck misses, but the unique constraint still fires on insert.
	store := &stubMemberStore{
		getErr:    pgx.ErrNoRows,
		createErr: &pgconn.PgError{Code: "23505"},
	}
	app := newMemberTestApp(store, &stubStats{})

	req := jsonRequest(t, http.MethodPost, "/api/admin/members", map[string]string{
		"name":     "Jordan Miles",
		"email":    "jordan@example.com",
		"password": "secret123",
	})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["error"] != "User already exists with this email" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestDeleteMemberNotFound(t *testing.T) {
	store := &stubMemberStore{deleteErr: pgx.ErrNoRows}
	stats := &stubStats{}
	app := newMemberTestApp(store, stats)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/members/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if stats.invalidations != 0 {
		t.Errorf("expected no invalidation on failed delete, got %d", stats.invalidations)
	}
}

func TestDeleteMemberSucceeds(t *testing.T) {
	store := &stubMemberStore{}
	stats := &stubStats{}
	app := newMemberTestApp(store, stats)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/members/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.deleteCalls != 1 {
		t.Errorf("expected one delete call, got %d", store.deleteCalls)
	}
	if stats.invalidations != 1 {
		t.Errorf("expected stats invalidation, got %d", stats.invalidations)
	}
}

func TestUpdateMemberInvalidEmail(t *testing.T) {
	store := &stubMemberStore{}
	app := newMemberTestApp(store, &stubStats{})

	req := jsonRequest(t, http.MethodPut, "/api/admin/members/7", map[string]string{
		"email": "not-an-email",
	})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListMembersReturnsEmptySlice(t *testing.T) {
	store := &stubMemberStore{members: []models.User{}}
	app := newMemberTestApp(store, &stubStats{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/members", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected empty array, got %v", body["data"])
	}
	if len(data) != 0 {
		t.Errorf("expected no members, got %d", len(data))
	}
}
