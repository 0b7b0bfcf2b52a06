package repository

import (
	"context"

	"github.com/Vibush01/BeFit/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(
	ctx context.Context,
	gymID int64,
	senderID int64,
	senderRole string,
	message string,
) (*models.ChatMessage, error) {
	query := `
		WITH inserted AS (
			INSERT INTO chat_messages (gym_id, sender_id, sender_role, message)
			VALUES ($1, $2, $3, $4)
			RETURNING id, gym_id, sender_id, sender_role, message, created_at
		)
		SELECT i.id, i.gym_id, i.sender_id, a.name, i.sender_role, i.message, i.created_at
		FROM inserted i
		JOIN accounts a ON a.id = i.sender_id
	`

	var chatMessage models.ChatMessage
	err := r.db.QueryRow(ctx, query, gymID, senderID, senderRole, message).Scan(
		&chatMessage.ID,
		&chatMessage.GymID,
		&chatMessage.SenderID,
		&chatMessage.SenderName,
		&chatMessage.SenderRole,
		&chatMessage.Message,
		&chatMessage.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &chatMessage, nil
}

func (r *MessageRepository) ListByGym(ctx context.Context, gymID int64) ([]models.ChatMessage, error) {
	query := `
		SELECT m.id, m.gym_id, m.sender_id, a.name, m.sender_role, m.message, m.created_at
		FROM chat_messages m
		JOIN accounts a ON a.id = m.sender_id
		WHERE m.gym_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, gymID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var chatMessage models.ChatMessage
		if err := rows.Scan(
			&chatMessage.ID,
			&chatMessage.GymID,
			&chatMessage.SenderID,
			&chatMessage.SenderName,
			&chatMessage.SenderRole,
			&chatMessage.Message,
			&chatMessage.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, chatMessage)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
