package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var testTime = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d targets for %d values", len(dest), len(r.values))
	}
	for i := range dest {
		target := reflect.ValueOf(dest[i]).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		value := reflect.ValueOf(r.values[i])
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: cannot assign %s to %s", value.Type(), target.Type())
		}
		target.Set(value)
	}
	return nil
}

// fakeTx satisfies pgx.Tx through the embedded interface; only the methods the
// repositories call are implemented.
type fakeTx struct {
	pgx.Tx

	mu         sync.Mutex
	queryRowFn func(query string, args []any) stubRow
	queries    []string
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	tx.mu.Lock()
	tx.queries = append(tx.queries, query)
	tx.mu.Unlock()
	return tx.queryRowFn(query, args)
}

func (tx *fakeTx) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	tx.mu.Lock()
	tx.queries = append(tx.queries, query)
	tx.mu.Unlock()
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (tx *fakeTx) Commit(_ context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(_ context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

func (tx *fakeTx) ran(fragment string) bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, query := range tx.queries {
		if strings.Contains(query, fragment) {
			return true
		}
	}
	return false
}

type fakeDB struct {
	tx     *fakeTx
	begins int
}

func (db *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	db.begins++
	return db.tx, nil
}

type stubAccountRepo struct {
	accounts map[int64]*models.Account
	err      error
}

func (r *stubAccountRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func joinRequestRow(id, accountID int64, role string, gymID int64, status string) stubRow {
	return stubRow{values: []any{id, accountID, role, gymID, status, testTime, nil}}
}

func analyticsRow(action string, actorID int64, role string) stubRow {
	return stubRow{values: []any{int64(1), action, actorID, role, []byte(`{}`), testTime, nil}}
}
