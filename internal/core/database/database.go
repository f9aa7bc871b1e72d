package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm wraps an existing connection pool so gorm and sqlx share one set of connections.
func OpenGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return db, nil
}

type txKey struct{}

type txState struct {
	tx *gorm.DB

	mu          sync.Mutex
	afterCommit []func()
}

// Transactor runs a function inside one database transaction and makes the transaction visible to every
// repository through the context.
type Transactor struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTransactor(db *gorm.DB, logger *slog.Logger) *Transactor {
	return &Transactor{db: db, logger: logger}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise. Nested calls join the outer transaction.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}

	state.mu.Lock()
	hooks := state.afterCommit
	state.mu.Unlock()
	for _, hook := range hooks {
		t.runHook(hook)
	}
	return nil
}

func (t *Transactor) runHook(hook func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("after-commit hook panicked", "panic", r)
		}
	}()
	hook()
}

// Conn returns the transaction bound to ctx, or db scoped to ctx when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.tx != nil {
		return state.tx
	}
	return db.WithContext(ctx)
}

// AfterCommit defers fn until the surrounding transaction commits; it is dropped on rollback.
// Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		fn()
		return
	}
	state.mu.Lock()
	state.afterCommit = append(state.afterCommit, fn)
	state.mu.Unlock()
}

// InScope restricts a query to rows whose column is inside the scope.
func InScope(column string, scope access.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.All {
			return db
		}
		if len(scope.IDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(column+" IN ?", scope.IDs)
	}
}
