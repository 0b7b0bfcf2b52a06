package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/jackc/pgx/v5"
)

type workoutPlanReader interface {
	ListByTrainerID(ctx context.Context, trainerID int64) ([]models.WorkoutPlan, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]models.WorkoutPlan, error)
	ListByGymID(ctx context.Context, gymID int64) ([]models.WorkoutPlan, error)
	GetByID(ctx context.Context, planID int64) (*models.WorkoutPlan, error)
}

type WorkoutPlanService struct {
	db          txBeginner
	planRepo    workoutPlanReader
	accountRepo accountReader
}

type CreatePlanInput struct {
	MemberID  int64
	Plan      string
	StartDate time.Time
	EndDate   time.Time
}

func NewWorkoutPlanService(
	db txBeginner,
	planRepo workoutPlanReader,
	accountRepo accountReader,
) *WorkoutPlanService {
	return &WorkoutPlanService{
		db:          db,
		planRepo:    planRepo,
		accountRepo: accountRepo,
	}
}

// CreatePlan assigns a plan from a trainer to a member of the trainer's own gym.
func (s *WorkoutPlanService) CreatePlan(
	ctx context.Context,
	trainerID int64,
	role string,
	input CreatePlanInput,
) (*models.WorkoutPlan, error) {
	if role != models.RoleTrainer {
		return nil, ErrForbidden
	}

	plan := strings.TrimSpace(input.Plan)
	if input.MemberID <= 0 || plan == "" {
		return nil, ErrInvalidInput
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidInput
	}

	trainer, err := s.accountRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if trainer.GymID == nil {
		return nil, ErrNotInGym
	}
	gymID := *trainer.GymID

	member, err := s.accountRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.Role != models.RoleMember {
		return nil, ErrMemberNotFound
	}
	if !member.BelongsToGym(gymID) {
		return nil, ErrNotPlanTrainer
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	created, err := repository.NewWorkoutPlanRepository(tx).Create(ctx, repository.CreateWorkoutPlanInput{
		TrainerID: trainerID,
		MemberID:  member.ID,
		GymID:     gymID,
		Plan:      plan,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := repository.NewAnalyticsRepository(tx).Create(
		ctx,
		models.ActionWorkoutPlanAssigned,
		trainerID,
		role,
		map[string]any{"plan_id": created.ID, "member_id": member.ID, "gym_id": gymID},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

func (s *WorkoutPlanService) ListPlans(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.WorkoutPlan, error) {
	switch role {
	case models.RoleTrainer:
		return s.planRepo.ListByTrainerID(ctx, actorID)
	case models.RoleMember:
		return s.planRepo.ListByMemberID(ctx, actorID)
	case models.RoleGym:
		return s.planRepo.ListByGymID(ctx, actorID)
	default:
		return nil, ErrForbidden
	}
}

func (s *WorkoutPlanService) GetPlan(
	ctx context.Context,
	actorID int64,
	role string,
	planID int64,
) (*models.WorkoutPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !canAccessPlan(role, actorID, plan) {
		return nil, ErrForbidden
	}
	return plan, nil
}

func canAccessPlan(role string, actorID int64, plan *models.WorkoutPlan) bool {
	if plan == nil {
		return false
	}

	switch role {
	case models.RoleTrainer:
		return actorID == plan.TrainerID
	case models.RoleMember:
		return actorID == plan.MemberID
	case models.RoleGym:
		return actorID == plan.GymID
	default:
		return false
	}
}
