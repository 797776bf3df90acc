package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled")
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type EnrollmentService struct {
	db        txBeginner
	classRepo *repository.ClassRepository
}

func NewEnrollmentService(db txBeginner, classRepo *repository.ClassRepository) *EnrollmentService {
	return &EnrollmentService{
		db:        db,
		classRepo: classRepo,
	}
}

// Enroll adds the member to the class roster. The capacity check is a
// read-then-write, so the whole sequence runs inside a transaction holding a
// per-class advisory lock; concurrent enrollments into the same class
// serialize and the capacity invariant holds.
func (s *EnrollmentService) Enroll(ctx context.Context, classID, memberID int64) error {
	if classID <= 0 || memberID <= 0 {
		return ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", classID); err != nil {
		return err
	}

	txClassRepo := repository.NewClassRepository(tx)

	class, err := txClassRepo.GetByID(ctx, classID)
	if err != nil {
		return err
	}

	enrolledCount, err := txClassRepo.CountEnrolled(ctx, classID)
	if err != nil {
		return err
	}
	if enrolledCount >= class.Capacity {
		return ErrClassFull
	}

	enrolled, err := txClassRepo.IsEnrolled(ctx, classID, memberID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}

	if err := txClassRepo.AddEnrollment(ctx, classID, memberID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *EnrollmentService) Unenroll(ctx context.Context, classID, memberID int64) error {
	if classID <= 0 || memberID <= 0 {
		return ErrInvalidInput
	}

	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return err
	}

	err := s.classRepo.RemoveEnrollment(ctx, classID, memberID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotEnrolled
	}
	return err
}

// ListAvailable returns every class with its current enrollment count so
// members can see what still has room.
func (s *EnrollmentService) ListAvailable(ctx context.Context) ([]models.ClassAvailability, error) {
	classes, err := s.classRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	classIDs := make([]int64, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	counts, err := s.classRepo.EnrolledCountsByClassIDs(ctx, classIDs)
	if err != nil {
		return nil, err
	}

	available := make([]models.ClassAvailability, 0, len(classes))
	for _, class := range classes {
		available = append(available, models.ClassAvailability{
			Class:         class,
			EnrolledCount: counts[class.ID],
		})
	}
	return available, nil
}

func (s *EnrollmentService) ListMine(ctx context.Context, memberID int64) ([]models.Class, error) {
	return s.classRepo.ListByMemberID(ctx, memberID)
}
