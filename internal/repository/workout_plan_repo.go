package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/GymDeskBack/internal/models"
)

type CreateWorkoutPlanInput struct {
	Title       string
	Description *string
	FileURL     string
	AssignedTo  int64
	AssignedBy  int64
}

type UpdateWorkoutPlanInput struct {
	Title       *string
	Description *string
	FileURL     *string
	AssignedTo  *int64
}

type WorkoutPlanRepository struct {
	db DBTX
}

func NewWorkoutPlanRepository(db DBTX) *WorkoutPlanRepository {
	return &WorkoutPlanRepository{db: db}
}

func (r *WorkoutPlanRepository) Create(ctx context.Context, input CreateWorkoutPlanInput) (*models.WorkoutPlan, error) {
	query := `
		INSERT INTO workout_plans (title, description, file_url, assigned_to, assigned_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, file_url, assigned_to, assigned_by, assigned_date
	`

	var plan models.WorkoutPlan
	err := r.db.QueryRow(
		ctx,
		query,
		input.Title,
		input.Description,
		input.FileURL,
		input.AssignedTo,
		input.AssignedBy,
	).Scan(
		&plan.ID,
		&plan.Title,
		&plan.Description,
		&plan.FileURL,
		&plan.AssignedTo,
		&plan.AssignedBy,
		&plan.AssignedDate,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *WorkoutPlanRepository) GetByID(ctx context.Context, planID int64) (*models.WorkoutPlan, error) {
	query := `
		SELECT id, title, description, file_url, assigned_to, assigned_by, assigned_date
		FROM workout_plans
		WHERE id = $1
	`

	var plan models.WorkoutPlan
	err := r.db.QueryRow(ctx, query, planID).Scan(
		&plan.ID,
		&plan.Title,
		&plan.Description,
		&plan.FileURL,
		&plan.AssignedTo,
		&plan.AssignedBy,
		&plan.AssignedDate,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// ListDetailed joins assignee and assigner summaries the way the admin
// dashboard renders plans.
func (r *WorkoutPlanRepository) ListDetailed(ctx context.Context) ([]models.WorkoutPlanDetail, error) {
	query := `
		SELECT p.id, p.title, p.description, p.file_url, p.assigned_to, p.assigned_by, p.assigned_date,
			   m.id, m.name, m.email,
			   a.id, a.name, a.email
		FROM workout_plans p
		JOIN users m ON m.id = p.assigned_to
		JOIN users a ON a.id = p.assigned_by
		ORDER BY p.assigned_date DESC, p.id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.WorkoutPlanDetail, 0)
	for rows.Next() {
		var detail models.WorkoutPlanDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.Title,
			&detail.Description,
			&detail.FileURL,
			&detail.AssignedTo,
			&detail.AssignedBy,
			&detail.AssignedDate,
			&detail.Assignee.ID,
			&detail.Assignee.Name,
			&detail.Assignee.Email,
			&detail.Assigner.ID,
			&detail.Assigner.Name,
			&detail.Assigner.Email,
		); err != nil {
			return nil, err
		}
		plans = append(plans, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *WorkoutPlanRepository) ListByAssignee(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error) {
	query := `
		SELECT id, title, description, file_url, assigned_to, assigned_by, assigned_date
		FROM workout_plans
		WHERE assigned_to = $1
		ORDER BY assigned_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.WorkoutPlan, 0)
	for rows.Next() {
		var plan models.WorkoutPlan
		if err := rows.Scan(
			&plan.ID,
			&plan.Title,
			&plan.Description,
			&plan.FileURL,
			&plan.AssignedTo,
			&plan.AssignedBy,
			&plan.AssignedDate,
		); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *WorkoutPlanRepository) UpdatePartial(ctx context.Context, planID int64, input UpdateWorkoutPlanInput) (*models.WorkoutPlan, error) {
	query := `
		UPDATE workout_plans
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			file_url = COALESCE($3, file_url),
			assigned_to = COALESCE($4, assigned_to)
		WHERE id = $5
		RETURNING id, title, description, file_url, assigned_to, assigned_by, assigned_date
	`

	var plan models.WorkoutPlan
	err := r.db.QueryRow(
		ctx,
		query,
		input.Title,
		input.Description,
		input.FileURL,
		input.AssignedTo,
		planID,
	).Scan(
		&plan.ID,
		&plan.Title,
		&plan.Description,
		&plan.FileURL,
		&plan.AssignedTo,
		&plan.AssignedBy,
		&plan.AssignedDate,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *WorkoutPlanRepository) Delete(ctx context.Context, planID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workout_plans WHERE id = $1`, planID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WorkoutPlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workout_plans`).Scan(&count)
	return count, err
}
