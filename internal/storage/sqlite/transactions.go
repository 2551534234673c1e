package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GustavoCaso/spendtrace/internal/storage"
)

const transactionSelect = `SELECT t.id, t.vendor, t.amount, t.date, t.category_id, c.name, t.upload_id
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

func (s *sqliteStorage) GetTransactions(ctx context.Context) ([]storage.Transaction, error) {
	return s.queryTransactions(ctx, transactionSelect+" ORDER BY t.id")
}

func (s *sqliteStorage) GetTransaction(ctx context.Context, id int64) (storage.Transaction, error) {
	row := s.db.QueryRowContext(ctx, transactionSelect+" WHERE t.id = ?", id)
	return transactionFromRow(row.Scan)
}

func (s *sqliteStorage) GetTransactionsByCategory(ctx context.Context, categoryID int64) ([]storage.Transaction, error) {
	return s.queryTransactions(ctx, transactionSelect+" WHERE t.category_id = ? ORDER BY t.id", categoryID)
}

func (s *sqliteStorage) GetTransactionsByUpload(ctx context.Context, uploadID int64) ([]storage.Transaction, error) {
	return s.queryTransactions(ctx, transactionSelect+" WHERE t.upload_id = ? ORDER BY t.id", uploadID)
}

func (s *sqliteStorage) CreateTransaction(ctx context.Context, transaction storage.Transaction) (int64, error) {
	return insertTransaction(ctx, s.db, transaction)
}

func (s *sqliteStorage) UpdateTransaction(ctx context.Context, transaction storage.Transaction) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET vendor = ?, amount = ?, date = ?, category_id = ?
		 WHERE id = ?`,
		transaction.Vendor(),
		amountToColumn(transaction.Amount()),
		dateToColumn(transaction.Date()),
		transaction.CategoryID(),
		transaction.ID(),
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (s *sqliteStorage) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (s *sqliteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]storage.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return []storage.Transaction{}, err
	}
	defer rows.Close()

	transactions := []storage.Transaction{}

	for rows.Next() {
		transaction, transactionErr := transactionFromRow(rows.Scan)
		if transactionErr != nil {
			return []storage.Transaction{}, transactionErr
		}

		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

func insertTransaction(ctx context.Context, q queryer, transaction storage.Transaction) (int64, error) {
	uploadID := sql.NullInt64{}
	if transaction.UploadID() != nil {
		uploadID = sql.NullInt64{Int64: *transaction.UploadID(), Valid: true}
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO transactions(vendor, amount, date, category_id, upload_id) VALUES(?, ?, ?, ?, ?)",
		transaction.Vendor(),
		amountToColumn(transaction.Amount()),
		dateToColumn(transaction.Date()),
		transaction.CategoryID(),
		uploadID,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func transactionFromRow(scan func(dest ...any) error) (storage.Transaction, error) {
	var id, categoryID int64
	var vendor, amount, date, categoryName string
	var uploadID sql.NullInt64

	if err := scan(&id, &vendor, &amount, &date, &categoryID, &categoryName, &uploadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &storage.NotFoundError{}
		}
		return nil, err
	}

	parsedAmount, err := amountFromColumn(amount)
	if err != nil {
		return nil, err
	}

	parsedDate, err := dateFromColumn(date)
	if err != nil {
		return nil, err
	}

	var upload *int64
	if uploadID.Valid {
		upload = &uploadID.Int64
	}

	return storage.NewTransaction(
		id,
		vendor,
		parsedAmount,
		parsedDate,
		categoryID,
		categoryName,
		upload,
	), nil
}
