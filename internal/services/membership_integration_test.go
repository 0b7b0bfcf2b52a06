//go:build integration

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Vibush01/BeFit/internal/database"
	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("befit"),
		postgrescontainer.WithUsername("befit"),
		postgrescontainer.WithPassword("befit"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(connStr))

	pool, err := database.Connect(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createAccount(t *testing.T, ctx context.Context, repo *repository.AccountRepository, role string) *models.Account {
	t.Helper()
	account := &models.Account{
		Role:         role,
		Name:         fmt.Sprintf("%s-%d", role, time.Now().UnixNano()),
		Email:        fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, account))
	return account
}

func countAnalytics(t *testing.T, ctx context.Context, pool *pgxpool.Pool, action string) int {
	t.Helper()
	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM analytics_entries WHERE action = $1`, action).Scan(&count))
	return count
}

type discardBroadcaster struct{}

func (discardBroadcaster) Broadcast(int64, *models.ChatMessage) {}

func TestMembershipAndChatAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(t)

	accountRepo := repository.NewAccountRepository(pool)
	joinRequestRepo := repository.NewJoinRequestRepository(pool)
	membership := NewMembershipService(pool, accountRepo, joinRequestRepo)
	chat := NewChatService(accountRepo, repository.NewMessageRepository(pool), discardBroadcaster{})

	gym := createAccount(t, ctx, accountRepo, models.RoleGym)
	otherGym := createAccount(t, ctx, accountRepo, models.RoleGym)
	member := createAccount(t, ctx, accountRepo, models.RoleMember)

	t.Run("submit and list", func(t *testing.T) {
		request, err := membership.SubmitJoinRequest(ctx, member.ID, models.RoleMember, models.RoleMember, gym.ID)
		require.NoError(t, err)
		require.Equal(t, models.JoinRequestPending, request.Status)

		_, err = membership.SubmitJoinRequest(ctx, member.ID, models.RoleMember, models.RoleMember, gym.ID)
		require.ErrorIs(t, err, ErrDuplicateRequest)

		requests, err := membership.ListJoinRequests(ctx, gym.ID, models.RoleGym, gym.ID)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		require.Equal(t, member.Name, requests[0].Requester.Name)
		require.Equal(t, 1, countAnalytics(t, ctx, pool, models.ActionJoinRequest))
	})

	t.Run("chat is closed before approval", func(t *testing.T) {
		_, err := chat.FetchHistory(ctx, member.ID, models.RoleMember, gym.ID)
		require.ErrorIs(t, err, ErrNotInGym)
	})

	t.Run("approve assigns gym", func(t *testing.T) {
		requests, err := membership.ListJoinRequests(ctx, gym.ID, models.RoleGym, gym.ID)
		require.NoError(t, err)

		_, err = membership.DecideJoinRequest(ctx, otherGym.ID, models.RoleGym, requests[0].ID, ActionApprove)
		require.ErrorIs(t, err, ErrNotGymOwner)

		decided, err := membership.DecideJoinRequest(ctx, gym.ID, models.RoleGym, requests[0].ID, ActionApprove)
		require.NoError(t, err)
		require.Equal(t, models.JoinRequestApproved, decided.Status)
		require.NotNil(t, decided.DecidedAt)

		stored, err := accountRepo.GetByID(ctx, member.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.GymID)
		require.Equal(t, gym.ID, *stored.GymID)

		_, err = membership.DecideJoinRequest(ctx, gym.ID, models.RoleGym, requests[0].ID, ActionReject)
		require.ErrorIs(t, err, ErrAlreadyProcessed)

		_, err = membership.SubmitJoinRequest(ctx, member.ID, models.RoleMember, models.RoleMember, otherGym.ID)
		require.ErrorIs(t, err, ErrAlreadyInGym)
	})

	t.Run("chat history in persistence order", func(t *testing.T) {
		for _, text := range []string{"first", "second", "third"} {
			_, err := chat.SendMessage(ctx, member.ID, models.RoleMember, gym.ID, text)
			require.NoError(t, err)
		}
		_, err := chat.SendMessage(ctx, gym.ID, models.RoleGym, gym.ID, "welcome")
		require.NoError(t, err)

		history, err := chat.FetchHistory(ctx, gym.ID, models.RoleGym, gym.ID)
		require.NoError(t, err)
		require.Len(t, history, 4)
		require.Equal(t, "first", history[0].Message)
		require.Equal(t, "welcome", history[3].Message)
		require.Equal(t, gym.Name, history[3].SenderName)
		require.Equal(t, member.Name, history[0].SenderName)
	})
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(t)

	accountRepo := repository.NewAccountRepository(pool)
	membership := NewMembershipService(pool, accountRepo, repository.NewJoinRequestRepository(pool))

	gym := createAccount(t, ctx, accountRepo, models.RoleGym)
	trainer := createAccount(t, ctx, accountRepo, models.RoleTrainer)

	request, err := membership.SubmitJoinRequest(ctx, trainer.ID, models.RoleTrainer, models.RoleTrainer, gym.ID)
	require.NoError(t, err)

	actions := []string{ActionApprove, ActionReject, ActionApprove, ActionReject}
	results := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(i int, action string) {
			defer wg.Done()
			_, results[i] = membership.DecideJoinRequest(ctx, gym.ID, models.RoleGym, request.ID, action)
		}(i, action)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrAlreadyProcessed)
	}
	require.Equal(t, 1, succeeded)

	decisions := countAnalytics(t, ctx, pool, models.ActionJoinRequestApproved) +
		countAnalytics(t, ctx, pool, models.ActionJoinRequestRejected)
	require.Equal(t, 1, decisions)
}

func TestApprovalFailsWhenRequesterJoinedElsewhere(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(t)

	accountRepo := repository.NewAccountRepository(pool)
	joinRequestRepo := repository.NewJoinRequestRepository(pool)
	membership := NewMembershipService(pool, accountRepo, joinRequestRepo)

	first := createAccount(t, ctx, accountRepo, models.RoleGym)
	second := createAccount(t, ctx, accountRepo, models.RoleGym)
	member := createAccount(t, ctx, accountRepo, models.RoleMember)

	firstRequest, err := membership.SubmitJoinRequest(ctx, member.ID, models.RoleMember, models.RoleMember, first.ID)
	require.NoError(t, err)
	secondRequest, err := membership.SubmitJoinRequest(ctx, member.ID, models.RoleMember, models.RoleMember, second.ID)
	require.NoError(t, err)

	_, err = membership.DecideJoinRequest(ctx, first.ID, models.RoleGym, firstRequest.ID, ActionApprove)
	require.NoError(t, err)

	_, err = membership.DecideJoinRequest(ctx, second.ID, models.RoleGym, secondRequest.ID, ActionApprove)
	require.ErrorIs(t, err, ErrAlreadyInGym)

	stored, err := joinRequestRepo.GetByID(ctx, secondRequest.ID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestPending, stored.Status)

	rejected, err := membership.DecideJoinRequest(ctx, second.ID, models.RoleGym, secondRequest.ID, ActionReject)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestRejected, rejected.Status)
}
