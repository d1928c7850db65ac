package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // registers the PostgreSQL driver

	"github.com/neighborly/engage/internal/config"
	"github.com/neighborly/engage/internal/model"
)

func Connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Connected to database successfully")
	return db, nil
}

const (
	maxRetries   = 3
	retryBackoff = 100 * time.Millisecond
)

// WithRetry runs fn, retrying a small bounded number of times when the
// store looks unreachable. Anything that is not a transient failure is
// returned to the caller untouched on the first attempt.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
			log.Printf("[Database] Retrying after transient error (attempt %d): %v", attempt+1, err)
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
}

// IsTransient reports whether err indicates the store is unreachable
// rather than a failure of the statement itself.
func IsTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 is connection_exception.
		return pqErr.Code.Class() == "08"
	}
	return false
}

// IsSerializationFailure reports whether err is a serialization or
// deadlock abort, surfaced to clients as a Conflict they may retry once.
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
