package models

import "time"

type ChatMessage struct {
	ID         int64     `json:"id"`
	GymID      int64     `json:"gym_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
