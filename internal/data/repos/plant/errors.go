package plant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
)

// ErrStoreUnavailable marks failures that are worth retrying on the next tick
// (connection loss, timeouts, server shutdown).
var ErrStoreUnavailable = errors.New("plant store unavailable")

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return perr.ErrNotFound
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

// IsTransient classifies driver errors by Postgres SQLSTATE class.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "08", // connection exception
			"53", // insufficient resources
			"57": // operator intervention
			return true
		}
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
