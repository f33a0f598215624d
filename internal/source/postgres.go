package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/grid"
)

// TableName is the table the Postgres source reads.
const TableName = "grid_users"

const createTable = `CREATE TABLE IF NOT EXISTS grid_users (
	id          integer PRIMARY KEY,
	name        text NOT NULL,
	email       text NOT NULL,
	role        text NOT NULL,
	status      text NOT NULL,
	last_active timestamptz NOT NULL
)`

const selectUsers = `SELECT id, name, email, role, status, last_active FROM grid_users ORDER BY id`

// DB is the subset of *pgxpool.Pool the source needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Postgres loads rows from the grid_users table.
type Postgres struct {
	db DB
}

// NewPostgres wraps a pool.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

type userRecord struct {
	ID         int32     `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Role       string    `db:"role"`
	Status     string    `db:"status"`
	LastActive time.Time `db:"last_active"`
}

// Load reads every user ordered by id. That order becomes the store order.
func (p *Postgres) Load(ctx context.Context) ([]grid.Row, error) {
	rows, err := p.db.Query(ctx, selectUsers)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableName, err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRecord])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", TableName, err)
	}

	out := make([]grid.Row, len(records))
	for i, r := range records {
		out[i] = grid.Row{
			ID:         int(r.ID),
			Name:       r.Name,
			Email:      r.Email,
			Role:       grid.Role(r.Role),
			Status:     grid.Status(r.Status),
			LastActive: r.LastActive.UTC(),
		}
	}
	return out, nil
}

// Seed creates the table if needed, empties it and bulk-loads rows.
func (p *Postgres) Seed(ctx context.Context, rows []grid.Row) (int64, error) {
	if _, err := p.db.Exec(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create %s: %w", TableName, err)
	}
	if _, err := p.db.Exec(ctx, "TRUNCATE "+TableName); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", TableName, err)
	}

	n, err := p.db.CopyFrom(ctx,
		pgx.Identifier{TableName},
		[]string{"id", "name", "email", "role", "status", "last_active"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{int32(r.ID), r.Name, r.Email, string(r.Role), string(r.Status), r.LastActive}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", TableName, err)
	}
	return n, nil
}

// Connect opens and pings a pool using the database settings.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
