package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/observability"
	"github.com/jackc/pgx/v5"
)

type chatMessageStore interface {
	Create(ctx context.Context, gymID int64, senderID int64, senderRole string, message string) (*models.ChatMessage, error)
	ListByGym(ctx context.Context, gymID int64) ([]models.ChatMessage, error)
}

// RoomBroadcaster fans a persisted message out to every live connection of a gym.
// Implementations must deliver messages for one gym in the order Broadcast is called.
type RoomBroadcaster interface {
	Broadcast(gymID int64, message *models.ChatMessage)
}

type ChatService struct {
	accountRepo accountReader
	messageRepo chatMessageStore
	broadcaster RoomBroadcaster

	mu sync.Mutex
	// one lock per gym that has chatted, never evicted; bounded by the gym count.
	gymLocks map[int64]*sync.Mutex
}

func NewChatService(
	accountRepo accountReader,
	messageRepo chatMessageStore,
	broadcaster RoomBroadcaster,
) *ChatService {
	return &ChatService{
		accountRepo: accountRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		gymLocks:    make(map[int64]*sync.Mutex),
	}
}

// AuthorizeGym reports whether the actor may read or post in the gym's chat. A gym
// account is only ever authorized for its own room.
func (s *ChatService) AuthorizeGym(ctx context.Context, actorID int64, role string, gymID int64) error {
	if !canChat(role) {
		return ErrForbidden
	}
	if gymID <= 0 {
		return ErrInvalidInput
	}
	if role == models.RoleGym {
		if actorID != gymID {
			return ErrNotInGym
		}
		return nil
	}

	account, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if !account.BelongsToGym(gymID) {
		return ErrNotInGym
	}
	return nil
}

func (s *ChatService) FetchHistory(
	ctx context.Context,
	actorID int64,
	role string,
	gymID int64,
) ([]models.ChatMessage, error) {
	if err := s.AuthorizeGym(ctx, actorID, role, gymID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByGym(ctx, gymID)
}

// SendMessage persists the message and only then hands it to the broadcaster. Both
// steps run under the gym's lock so subscribers observe persistence order.
func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	role string,
	gymID int64,
	text string,
) (*models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.AuthorizeGym(ctx, actorID, role, gymID); err != nil {
		return nil, err
	}

	lock := s.lockFor(gymID)
	lock.Lock()
	defer lock.Unlock()

	message, err := s.messageRepo.Create(ctx, gymID, actorID, role, trimmed)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(gymID, message)
	observability.RecordChatBroadcast()
	return message, nil
}

func (s *ChatService) lockFor(gymID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.gymLocks[gymID]
	if !ok {
		lock = &sync.Mutex{}
		s.gymLocks[gymID] = lock
	}
	return lock
}

func canChat(role string) bool {
	return role == models.RoleMember || role == models.RoleTrainer || role == models.RoleGym
}
