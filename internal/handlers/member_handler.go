package handlers

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
	"github.com/saeid-a/GymDeskBack/pkg/utils"
)

type memberStore interface {
	ListMembers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePartial(ctx context.Context, id int64, input repository.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type statsInvalidator interface {
	Invalidate()
}

// MemberHandler is the admin-facing member CRUD surface.
type MemberHandler struct {
	members memberStore
	stats   statsInvalidator
}

func NewMemberHandler(members memberStore, stats statsInvalidator) *MemberHandler {
	return &MemberHandler{members: members, stats: stats}
}

func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.members.ListMembers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list members",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    members,
	})
}

type createMemberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *MemberHandler) CreateMember(c *fiber.Ctx) error {
	var req createMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if msg := missingFieldsMessage(map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid email format",
		})
	}
	email := strings.ToLower(parsedEmail.Address)

	existing, err := h.members.GetByEmail(c.Context(), email)
	if err == nil && existing != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User already exists with this email",
		})
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to check email",
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to hash password",
		})
	}

	member := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleMember,
	}
	if err := h.members.CreateUser(c.Context(), member); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "User already exists with this email",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create member",
		})
	}

	h.stats.Invalidate()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    member,
	})
}

type updateMemberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	memberID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid member id",
		})
	}

	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	input := repository.UpdateUserInput{
		Name: req.Name,
	}

	if req.Email != nil {
		parsedEmail, err := mail.ParseAddress(strings.TrimSpace(*req.Email))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid email format",
			})
		}
		email := strings.ToLower(parsedEmail.Address)
		input.Email = &email
	}

	// Password changes are the only mutation that rehashes.
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to hash password",
			})
		}
		input.PasswordHash = &hashed
	}

	member, err := h.members.UpdatePartial(c.Context(), memberID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Member not found",
			})
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "User already exists with this email",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update member",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    member,
	})
}

func (h *MemberHandler) DeleteMember(c *fiber.Ctx) error {
	memberID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid member id",
		})
	}

	if err := h.members.Delete(c.Context(), memberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Member not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete member",
		})
	}

	h.stats.Invalidate()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}
