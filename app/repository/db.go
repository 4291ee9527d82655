package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-retry"
)

// ErrUnavailable marks a storage-connectivity failure. It is transient and
// retryable; business-rule rejections never wrap it.
var ErrUnavailable = errors.New("storage unavailable")

const (
	connectAttempts = 3
	connectDelay    = time.Second

	mysqlErrDuplicateEntry = 1062
)

// withRetry runs op, retrying connectivity failures a bounded number of
// times. Any other error is returned on the first attempt. After the last
// failed attempt the error is wrapped in ErrUnavailable so callers can tell
// a dead database from a business rejection.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewConstant(connectDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			if isConnectivityError(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil && isConnectivityError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsDuplicateEntry reports whether err is a MySQL unique-constraint
// violation. The database index is the authoritative uniqueness guard;
// application-level pre-checks only exist for friendlier messages.
func IsDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry
}

// DuplicateEntryOn reports whether err is a unique-constraint violation on
// an index whose name contains column.
func DuplicateEntryOn(err error, column string) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlErrDuplicateEntry {
		return false
	}
	return strings.Contains(myErr.Message, column)
}
