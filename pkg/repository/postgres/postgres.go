// Package postgres implements interfaces.Repository backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = interfaces.ErrNotFound

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Postgres struct {
	db     *sqlx.DB
	record *recordRepository
	claim  *expenseClaimRepository
	scheme *schemeRepository
	target *targetRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to databaseURL. Migrations are not applied; call Migrate.
func New(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect postgres")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sqlx.DB) *Postgres {
	return &Postgres{
		db:     db,
		record: &recordRepository{db: db},
		claim:  &expenseClaimRepository{db: db},
		scheme: &schemeRepository{db: db},
		target: &targetRepository{db: db},
	}
}

// Migrate applies every pending migration
func (p *Postgres) Migrate() error {
	return Migrate(p.db.DB)
}

// Migrate applies the embedded migrations to db
func Migrate(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to create migration source")
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return goerr.Wrap(err, "failed to create migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return goerr.Wrap(err, "failed to create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	return nil
}

func (p *Postgres) Record() interfaces.RecordRepository {
	return p.record
}

func (p *Postgres) ExpenseClaim() interfaces.ExpenseClaimRepository {
	return p.claim
}

func (p *Postgres) Scheme() interfaces.SchemeRepository {
	return p.scheme
}

func (p *Postgres) Target() interfaces.TargetRepository {
	return p.target
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
