package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/pantry/internal/config"
	"github.com/rl1809/pantry/internal/core/domain"
)

// MySQL error numbers translated into domain errors.
const (
	errDuplicateEntry  = 1062
	errLockDeadlock    = 1213
	errLockWaitTimeout = 1205
	errNoReferencedRow = 1452
	errOutOfRange      = 1264
)

// MySQLAdapter groups the repositories backed by one connection pool.
type MySQLAdapter struct {
	db *sql.DB

	Products  *ProductRepository
	Pantry    *PantryRepository
	Recipes   *RecipeRepository
	Favorites *FavoriteRepository
	Users     *UserRepository
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{
		db:        db,
		Products:  &ProductRepository{db: db},
		Pantry:    &PantryRepository{db: db},
		Recipes:   &RecipeRepository{db: db},
		Favorites: &FavoriteRepository{db: db},
		Users:     &UserRepository{db: db},
	}
}

// OpenMySQL opens a pool with the configured limits and verifies it with a ping.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// translateError maps driver errors onto the domain taxonomy and leaves
// anything else untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDuplicateEntry, errLockDeadlock, errLockWaitTimeout:
			return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
		case errNoReferencedRow:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, me.Message)
		case errOutOfRange:
			return domain.InvalidInput("%s", me.Message)
		}
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
