package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vibush01/BeFit/internal/models"
)

const accountColumns = `id, role, name, email, password_hash, gym_id, address,
	experience_years, experience_months, created_at, updated_at`

type GymListFilter struct {
	Query  string
	Offset int
	Limit  int
}

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (role, name, email, password_hash, address, experience_years, experience_months)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(
		ctx,
		query,
		account.Role,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Address,
		account.ExperienceYears,
		account.ExperienceMonths,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, role string, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 AND email = $2`
	return scanAccount(r.db.QueryRow(ctx, query, role, email))
}

// AssignGym sets the account's gym only when it has none yet. pgx.ErrNoRows means the
// account is missing, is a gym, or already belongs to a gym.
func (r *AccountRepository) AssignGym(ctx context.Context, accountID int64, gymID int64) error {
	query := `
		UPDATE accounts
		SET gym_id = $2, updated_at = NOW()
		WHERE id = $1
		  AND role IN ('trainer', 'member')
		  AND gym_id IS NULL
		RETURNING id
	`
	var id int64
	return r.db.QueryRow(ctx, query, accountID, gymID).Scan(&id)
}

func (r *AccountRepository) GetGym(ctx context.Context, gymID int64) (*models.Gym, error) {
	query := `
		SELECT id, name, email, address, created_at
		FROM accounts
		WHERE id = $1 AND role = 'gym'
	`
	var gym models.Gym
	err := r.db.QueryRow(ctx, query, gymID).
		Scan(&gym.ID, &gym.Name, &gym.Email, &gym.Address, &gym.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *AccountRepository) ListGyms(ctx context.Context, filter GymListFilter) ([]models.Gym, int, error) {
	args := []any{}
	where := "role = 'gym'"
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where += " AND LOWER(name) LIKE $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, name, email, address, created_at
		FROM accounts
		WHERE %s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	gyms := make([]models.Gym, 0)
	for rows.Next() {
		var gym models.Gym
		if err := rows.Scan(&gym.ID, &gym.Name, &gym.Email, &gym.Address, &gym.CreatedAt); err != nil {
			return nil, 0, err
		}
		gyms = append(gyms, gym)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return gyms, total, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Role,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.GymID,
		&account.Address,
		&account.ExperienceYears,
		&account.ExperienceMonths,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
