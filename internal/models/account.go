package models

import "time"

const (
	RoleGym     = "gym"
	RoleTrainer = "trainer"
	RoleMember  = "member"
)

// Account is the single identity record for every role. GymID is only ever set on
// trainer and member accounts, and only by an approved join request.
type Account struct {
	ID               int64     `json:"id"`
	Role             string    `json:"role"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	GymID            *int64    `json:"gym_id,omitempty"`
	Address          *string   `json:"address,omitempty"`
	ExperienceYears  *int      `json:"experience_years,omitempty"`
	ExperienceMonths *int      `json:"experience_months,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (a *Account) BelongsToGym(gymID int64) bool {
	if a == nil {
		return false
	}
	if a.Role == RoleGym {
		return a.ID == gymID
	}
	return a.GymID != nil && *a.GymID == gymID
}

func IsValidRole(role string) bool {
	switch role {
	case RoleGym, RoleTrainer, RoleMember:
		return true
	default:
		return false
	}
}

type Gym struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
