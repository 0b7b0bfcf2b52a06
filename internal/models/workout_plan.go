package models

import "time"

type WorkoutPlan struct {
	ID        int64     `json:"id"`
	TrainerID int64     `json:"trainer_id"`
	MemberID  int64     `json:"member_id"`
	GymID     int64     `json:"gym_id"`
	Plan      string    `json:"plan"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}
