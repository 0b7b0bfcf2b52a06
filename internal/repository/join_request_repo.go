package repository

import (
	"context"

	"github.com/Vibush01/BeFit/internal/models"
)

const joinRequestColumns = `id, account_id, account_role, gym_id, status, created_at, decided_at`

type JoinRequestRepository struct {
	db DBTX
}

func NewJoinRequestRepository(db DBTX) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

func (r *JoinRequestRepository) Create(
	ctx context.Context,
	accountID int64,
	accountRole string,
	gymID int64,
) (*models.JoinRequest, error) {
	query := `
		INSERT INTO join_requests (account_id, account_role, gym_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + joinRequestColumns
	return scanJoinRequest(r.db.QueryRow(ctx, query, accountID, accountRole, gymID))
}

func (r *JoinRequestRepository) GetByID(ctx context.Context, requestID int64) (*models.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE id = $1`
	return scanJoinRequest(r.db.QueryRow(ctx, query, requestID))
}

func (r *JoinRequestRepository) GetByIDForUpdate(ctx context.Context, requestID int64) (*models.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE id = $1 FOR UPDATE`
	return scanJoinRequest(r.db.QueryRow(ctx, query, requestID))
}

func (r *JoinRequestRepository) ListByGym(ctx context.Context, gymID int64) ([]models.JoinRequestDetail, error) {
	query := `
		SELECT jr.id, jr.account_id, jr.account_role, jr.gym_id, jr.status, jr.created_at, jr.decided_at,
		       a.name, a.email
		FROM join_requests jr
		JOIN accounts a ON a.id = jr.account_id
		WHERE jr.gym_id = $1
		ORDER BY jr.created_at DESC, jr.id DESC
	`

	rows, err := r.db.Query(ctx, query, gymID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.JoinRequestDetail, 0)
	for rows.Next() {
		var detail models.JoinRequestDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.AccountID,
			&detail.AccountRole,
			&detail.GymID,
			&detail.Status,
			&detail.CreatedAt,
			&detail.DecidedAt,
			&detail.Requester.Name,
			&detail.Requester.Email,
		); err != nil {
			return nil, err
		}
		detail.Requester.ID = detail.AccountID
		requests = append(requests, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// UpdateStatusIfCurrent moves the request to nextStatus only while it is still in
// currentStatus. pgx.ErrNoRows means another caller already moved it.
func (r *JoinRequestRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	requestID int64,
	currentStatus string,
	nextStatus string,
) (*models.JoinRequest, error) {
	query := `
		UPDATE join_requests
		SET status = $3, decided_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + joinRequestColumns
	return scanJoinRequest(r.db.QueryRow(ctx, query, requestID, currentStatus, nextStatus))
}

func scanJoinRequest(row rowScanner) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := row.Scan(
		&request.ID,
		&request.AccountID,
		&request.AccountRole,
		&request.GymID,
		&request.Status,
		&request.CreatedAt,
		&request.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}
