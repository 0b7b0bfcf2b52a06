package services

import (
	"context"
	"errors"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/observability"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const uniqueViolation = "23505"

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type accountReader interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

type joinRequestLister interface {
	ListByGym(ctx context.Context, gymID int64) ([]models.JoinRequestDetail, error)
}

type MembershipService struct {
	db              txBeginner
	accountRepo     accountReader
	joinRequestRepo joinRequestLister
}

func NewMembershipService(
	db txBeginner,
	accountRepo accountReader,
	joinRequestRepo joinRequestLister,
) *MembershipService {
	return &MembershipService{
		db:              db,
		accountRepo:     accountRepo,
		joinRequestRepo: joinRequestRepo,
	}
}

// SubmitJoinRequest files a pending request from a member or trainer to a gym and
// records the matching analytics entry in the same transaction.
func (s *MembershipService) SubmitJoinRequest(
	ctx context.Context,
	actorID int64,
	actorRole string,
	declaredRole string,
	gymID int64,
) (*models.JoinRequest, error) {
	if actorRole != models.RoleMember && actorRole != models.RoleTrainer {
		return nil, ErrForbidden
	}
	if declaredRole != actorRole {
		return nil, ErrRoleMismatch
	}
	if gymID <= 0 {
		return nil, ErrInvalidInput
	}

	if _, err := s.loadGym(ctx, gymID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.Role != actorRole {
		return nil, ErrAccountNotFound
	}
	if account.GymID != nil {
		return nil, ErrAlreadyInGym
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txJoinRequestRepo := repository.NewJoinRequestRepository(tx)
	txAnalyticsRepo := repository.NewAnalyticsRepository(tx)

	request, err := txJoinRequestRepo.Create(ctx, actorID, actorRole, gymID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	if _, err := txAnalyticsRepo.Create(ctx, models.ActionJoinRequest, actorID, actorRole, map[string]any{
		"gym_id":     gymID,
		"request_id": request.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	observability.RecordJoinRequestSubmitted(actorRole)
	return request, nil
}

func (s *MembershipService) ListJoinRequests(
	ctx context.Context,
	actorID int64,
	actorRole string,
	gymID int64,
) ([]models.JoinRequestDetail, error) {
	if actorRole != models.RoleGym {
		return nil, ErrForbidden
	}
	if gymID <= 0 {
		return nil, ErrInvalidInput
	}

	gym, err := s.loadGym(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if gym.ID != actorID {
		return nil, ErrNotGymOwner
	}

	return s.joinRequestRepo.ListByGym(ctx, gymID)
}

// DecideJoinRequest moves a pending request to approved or rejected. The row is
// locked, the status change is a compare-and-swap on pending, and on approval the
// requester's gym is assigned inside the same transaction, so concurrent decisions
// on one request cannot both take effect.
func (s *MembershipService) DecideJoinRequest(
	ctx context.Context,
	actorID int64,
	actorRole string,
	requestID int64,
	action string,
) (*models.JoinRequest, error) {
	if actorRole != models.RoleGym {
		return nil, ErrForbidden
	}
	nextStatus, err := statusForAction(action)
	if err != nil {
		return nil, err
	}
	if requestID <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txJoinRequestRepo := repository.NewJoinRequestRepository(tx)
	txAccountRepo := repository.NewAccountRepository(tx)
	txAnalyticsRepo := repository.NewAnalyticsRepository(tx)

	request, err := txJoinRequestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.GymID != actorID {
		return nil, ErrNotGymOwner
	}
	if request.Status != models.JoinRequestPending {
		return nil, ErrAlreadyProcessed
	}

	updated, err := txJoinRequestRepo.UpdateStatusIfCurrent(ctx, requestID, models.JoinRequestPending, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	analyticsAction := models.ActionJoinRequestRejected
	if nextStatus == models.JoinRequestApproved {
		analyticsAction = models.ActionJoinRequestApproved
		if err := txAccountRepo.AssignGym(ctx, request.AccountID, request.GymID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrAlreadyInGym
			}
			return nil, err
		}
	}

	if _, err := txAnalyticsRepo.Create(ctx, analyticsAction, actorID, actorRole, map[string]any{
		"request_id": request.ID,
		"account_id": request.AccountID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	observability.RecordJoinRequestDecision(nextStatus)
	return updated, nil
}

func (s *MembershipService) loadGym(ctx context.Context, gymID int64) (*models.Account, error) {
	gym, err := s.accountRepo.GetByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGymNotFound
		}
		return nil, err
	}
	if gym.Role != models.RoleGym {
		return nil, ErrGymNotFound
	}
	return gym, nil
}

func statusForAction(action string) (string, error) {
	switch action {
	case ActionApprove:
		return models.JoinRequestApproved, nil
	case ActionReject:
		return models.JoinRequestRejected, nil
	default:
		return "", ErrInvalidAction
	}
}
