package repository

import (
	"context"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
)

const workoutPlanColumns = `id, trainer_id, member_id, gym_id, plan, start_date, end_date, created_at`

type CreateWorkoutPlanInput struct {
	TrainerID int64
	MemberID  int64
	GymID     int64
	Plan      string
	StartDate time.Time
	EndDate   time.Time
}

type WorkoutPlanRepository struct {
	db DBTX
}

func NewWorkoutPlanRepository(db DBTX) *WorkoutPlanRepository {
	return &WorkoutPlanRepository{db: db}
}

func (r *WorkoutPlanRepository) Create(
	ctx context.Context,
	input CreateWorkoutPlanInput,
) (*models.WorkoutPlan, error) {
	query := `
		INSERT INTO workout_plans (trainer_id, member_id, gym_id, plan, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + workoutPlanColumns

	return scanWorkoutPlan(r.db.QueryRow(
		ctx,
		query,
		input.TrainerID,
		input.MemberID,
		input.GymID,
		input.Plan,
		input.StartDate,
		input.EndDate,
	))
}

func (r *WorkoutPlanRepository) ListByTrainerID(ctx context.Context, trainerID int64) ([]models.WorkoutPlan, error) {
	return r.list(ctx, "trainer_id", trainerID)
}

func (r *WorkoutPlanRepository) ListByMemberID(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error) {
	return r.list(ctx, "member_id", memberID)
}

func (r *WorkoutPlanRepository) ListByGymID(ctx context.Context, gymID int64) ([]models.WorkoutPlan, error) {
	return r.list(ctx, "gym_id", gymID)
}

func (r *WorkoutPlanRepository) GetByID(ctx context.Context, planID int64) (*models.WorkoutPlan, error) {
	query := `SELECT ` + workoutPlanColumns + ` FROM workout_plans WHERE id = $1`
	return scanWorkoutPlan(r.db.QueryRow(ctx, query, planID))
}

// column is always one of the fixed owner columns above, never caller input.
func (r *WorkoutPlanRepository) list(
	ctx context.Context,
	column string,
	ownerID int64,
) ([]models.WorkoutPlan, error) {
	query := `
		SELECT ` + workoutPlanColumns + `
		FROM workout_plans
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.WorkoutPlan, 0)
	for rows.Next() {
		plan, err := scanWorkoutPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func scanWorkoutPlan(row rowScanner) (*models.WorkoutPlan, error) {
	var plan models.WorkoutPlan
	err := row.Scan(
		&plan.ID,
		&plan.TrainerID,
		&plan.MemberID,
		&plan.GymID,
		&plan.Plan,
		&plan.StartDate,
		&plan.EndDate,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
