package models

import (
	"encoding/json"
	"time"
)

const (
	ActionJoinRequest         = "JoinRequest"
	ActionJoinRequestApproved = "JoinRequestApproved"
	ActionJoinRequestRejected = "JoinRequestRejected"
	ActionWorkoutPlanAssigned = "WorkoutPlanAssigned"
)

type AnalyticsEntry struct {
	ID          int64           `json:"id"`
	Action      string          `json:"action"`
	ActorID     int64           `json:"actor_id"`
	ActorRole   string          `json:"actor_role"`
	Details     json.RawMessage `json:"details"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}
