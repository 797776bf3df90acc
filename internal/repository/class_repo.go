package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
)

type CreateClassInput struct {
	Name            string
	Description     *string
	Schedule        time.Time
	DurationMinutes int
	Capacity        int
	Instructor      string
}

type UpdateClassInput struct {
	Name            *string
	Description     *string
	Schedule        *time.Time
	DurationMinutes *int
	Capacity        *int
	Instructor      *string
}

type ClassRepository struct {
	db DBTX
}

func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, name, description, schedule, duration_minutes, capacity, instructor, created_at, updated_at`

func (r *ClassRepository) Create(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	query := `
		INSERT INTO classes (name, description, schedule, duration_minutes, capacity, instructor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + classColumns

	var class models.Class
	err := r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Description,
		input.Schedule.UTC(),
		input.DurationMinutes,
		input.Capacity,
		input.Instructor,
	).Scan(
		&class.ID,
		&class.Name,
		&class.Description,
		&class.Schedule,
		&class.DurationMinutes,
		&class.Capacity,
		&class.Instructor,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &class, nil
}

func (r *ClassRepository) GetByID(ctx context.Context, classID int64) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	var class models.Class
	err := r.db.QueryRow(ctx, query, classID).Scan(
		&class.ID,
		&class.Name,
		&class.Description,
		&class.Schedule,
		&class.DurationMinutes,
		&class.Capacity,
		&class.Instructor,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &class, nil
}

func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes ORDER BY schedule ASC, id ASC`
	return r.list(ctx, query)
}

// ListByMemberID returns the classes a member is enrolled in.
func (r *ClassRepository) ListByMemberID(ctx context.Context, memberID int64) ([]models.Class, error) {
	query := `
		SELECT c.id, c.name, c.description, c.schedule, c.duration_minutes, c.capacity, c.instructor, c.created_at, c.updated_at
		FROM classes c
		JOIN class_enrollments e ON e.class_id = c.id
		WHERE e.member_id = $1
		ORDER BY c.schedule ASC, c.id ASC
	`
	return r.list(ctx, query, memberID)
}

func (r *ClassRepository) UpdatePartial(ctx context.Context, classID int64, input UpdateClassInput) (*models.Class, error) {
	query := `
		UPDATE classes
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			schedule = COALESCE($3, schedule),
			duration_minutes = COALESCE($4, duration_minutes),
			capacity = COALESCE($5, capacity),
			instructor = COALESCE($6, instructor),
			updated_at = NOW()
		WHERE id = $7
		RETURNING ` + classColumns

	var class models.Class
	err := r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Description,
		input.Schedule,
		input.DurationMinutes,
		input.Capacity,
		input.Instructor,
		classID,
	).Scan(
		&class.ID,
		&class.Name,
		&class.Description,
		&class.Schedule,
		&class.DurationMinutes,
		&class.Capacity,
		&class.Instructor,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &class, nil
}

func (r *ClassRepository) Delete(ctx context.Context, classID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ClassRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM classes`).Scan(&count)
	return count, err
}

// EnrolledMembersByClassIDs returns the member roster for each class id,
// assembled in one query to avoid per-class round trips.
func (r *ClassRepository) EnrolledMembersByClassIDs(ctx context.Context, classIDs []int64) (map[int64][]models.MemberSummary, error) {
	result := make(map[int64][]models.MemberSummary, len(classIDs))
	if len(classIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT e.class_id, u.id, u.name, u.email
		FROM class_enrollments e
		JOIN users u ON u.id = e.member_id
		WHERE e.class_id = ANY($1)
		ORDER BY e.enrolled_at ASC
	`
	rows, err := r.db.Query(ctx, query, classIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var classID int64
		var member models.MemberSummary
		if err := rows.Scan(&classID, &member.ID, &member.Name, &member.Email); err != nil {
			return nil, err
		}
		result[classID] = append(result[classID], member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ClassRepository) CountEnrolled(ctx context.Context, classID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM class_enrollments WHERE class_id = $1`, classID).
		Scan(&count)
	return count, err
}

func (r *ClassRepository) IsEnrolled(ctx context.Context, classID, memberID int64) (bool, error) {
	var enrolled bool
	err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM class_enrollments WHERE class_id = $1 AND member_id = $2)`,
		classID,
		memberID,
	).Scan(&enrolled)
	return enrolled, err
}

// AddEnrollment records the membership. One row covers both directions of
// the relation: the class roster and the member's class list.
func (r *ClassRepository) AddEnrollment(ctx context.Context, classID, memberID int64) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO class_enrollments (class_id, member_id) VALUES ($1, $2)`,
		classID,
		memberID,
	)
	return err
}

func (r *ClassRepository) RemoveEnrollment(ctx context.Context, classID, memberID int64) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM class_enrollments WHERE class_id = $1 AND member_id = $2`,
		classID,
		memberID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ClassRepository) EnrolledCountsByClassIDs(ctx context.Context, classIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(classIDs))
	if len(classIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT class_id, COUNT(*)
		FROM class_enrollments
		WHERE class_id = ANY($1)
		GROUP BY class_id
	`
	rows, err := r.db.Query(ctx, query, classIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var classID int64
		var count int
		if err := rows.Scan(&classID, &count); err != nil {
			return nil, err
		}
		result[classID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ClassRepository) list(ctx context.Context, query string, args ...any) ([]models.Class, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.Class, 0)
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(
			&class.ID,
			&class.Name,
			&class.Description,
			&class.Schedule,
			&class.DurationMinutes,
			&class.Capacity,
			&class.Instructor,
			&class.CreatedAt,
			&class.UpdatedAt,
		); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}
