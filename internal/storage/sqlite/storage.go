package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

type sqliteStorage struct {
	db *sql.DB
}

func New(dbConfig config.DBConfig) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dataSourceName(dbConfig))
	if err != nil {
		return nil, err
	}

	// Every connection to an in-memory database sees its own empty database.
	if isMemory(dbConfig.Source) {
		db.SetMaxOpenConns(1)
	} else {
		if dbConfig.MaxOpenConns > 0 {
			db.SetMaxOpenConns(dbConfig.MaxOpenConns)
		}

		if dbConfig.MaxIdleConns > 0 {
			db.SetMaxIdleConns(dbConfig.MaxIdleConns)
		}

		if dbConfig.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
		}
	}

	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteStorage{db: db}, nil
}

// dataSourceName turns the PRAGMA settings into driver DSN parameters so they
// apply to every pooled connection, not only the first one.
func dataSourceName(dbConfig config.DBConfig) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")

	if dbConfig.JournalMode != "" && !isMemory(dbConfig.Source) {
		params.Set("_journal_mode", dbConfig.JournalMode)
	}

	if dbConfig.Synchronous != "" {
		params.Set("_synchronous", dbConfig.Synchronous)
	}

	if dbConfig.BusyTimeout > 0 {
		params.Set("_busy_timeout", strconv.Itoa(dbConfig.BusyTimeout))
	}

	separator := "?"
	if strings.Contains(dbConfig.Source, "?") {
		separator = "&"
	}

	return dbConfig.Source + separator + params.Encode()
}

func isMemory(source string) bool {
	return strings.Contains(source, ":memory:") || strings.Contains(source, "mode=memory")
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

const amountPlaces = 2

// amountToColumn renders amount as fixed two-decimal text. Amounts may carry
// up to 19 digits, more than int64 cents can hold.
func amountToColumn(amount decimal.Decimal) string {
	return amount.StringFixed(amountPlaces)
}

func amountFromColumn(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

func dateToColumn(date time.Time) string {
	return util.FormatDate(date)
}

func dateFromColumn(value string) (time.Time, error) {
	return util.ParseDate(value)
}

// uniqueViolation maps a UNIQUE constraint failure to a ConflictError on the
// column named in the driver message.
func uniqueViolation(err error, value string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	field := "name"
	if strings.Contains(sqliteErr.Error(), ".slug") {
		field = "slug"
	}

	return &storage.ConflictError{Field: field, Value: value}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
