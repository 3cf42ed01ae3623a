package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"reservation-service/internal/config"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "repository").Logger()

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrCapacityExceeded = errors.New("daily capacity exceeded")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

type DB struct {
	*sqlx.DB
}

// NewDB opens the pool and pings it, retrying while the database comes up.
func NewDB(cfg config.DBConfig) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)
	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		conn, err = sqlx.Open("mysql", cfg.DSN())
		if err == nil {
			conn.SetMaxOpenConns(cfg.MaxOpenConns)
			conn.SetMaxIdleConns(cfg.MaxIdleConns)
			conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = conn.PingContext(ctx)
			cancel()
			if err == nil {
				logger.Info().Str("db", cfg.Name).Str("host", cfg.Host).Msg("Connected to DB")
				return &DB{conn}, nil
			}
			conn.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%d)", i+1, cfg.Name, cfg.Host, cfg.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%d after %d attempts: %w", cfg.Name, cfg.Host, cfg.Port, retries, err)
}

// NewDBFromConn wraps an already opened *sql.DB.
func NewDBFromConn(conn *sql.DB) *DB {
	return &DB{sqlx.NewDb(conn, "mysql")}
}

// withTx runs fn inside a transaction and rolls back unless fn succeeds and the commit goes through.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error().Err(rbErr).Msg("rollback failed")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
