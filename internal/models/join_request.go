package models

import "time"

const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

type JoinRequest struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"account_id"`
	AccountRole string     `json:"account_role"`
	GymID       int64      `json:"gym_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

type Requester struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type JoinRequestDetail struct {
	JoinRequest
	Requester Requester `json:"requester"`
}
