package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GustavoCaso/spendtrace/internal/storage"
)

const uploadSelect = `SELECT u.id, u.filename, u.size, u.uploaded_at,
	(SELECT COUNT(*) FROM transactions t WHERE t.upload_id = u.id)
	FROM uploads u`

func (s *sqliteStorage) GetUploads(ctx context.Context) ([]storage.Upload, error) {
	rows, err := s.db.QueryContext(ctx, uploadSelect+" ORDER BY u.id")
	if err != nil {
		return []storage.Upload{}, err
	}
	defer rows.Close()

	uploads := []storage.Upload{}

	for rows.Next() {
		upload, uploadErr := uploadFromRow(rows.Scan)
		if uploadErr != nil {
			return []storage.Upload{}, uploadErr
		}

		uploads = append(uploads, upload)
	}

	return uploads, rows.Err()
}

func (s *sqliteStorage) GetUpload(ctx context.Context, id int64) (storage.Upload, error) {
	row := s.db.QueryRowContext(ctx, uploadSelect+" WHERE u.id = ?", id)
	return uploadFromRow(row.Scan)
}

// DeleteUpload removes the upload and every transaction it created.
func (s *sqliteStorage) DeleteUpload(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE upload_id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to delete upload transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM uploads WHERE id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to delete upload: %w", err)
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result.RowsAffected()
}

// ImportUpload records the upload and materializes every row as a transaction
// in a single database transaction. Categories are looked up by name and
// created on first use.
func (s *sqliteStorage) ImportUpload(
	ctx context.Context,
	filename string,
	size int64,
	rows []storage.ImportRow,
) (storage.Upload, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	uploadedAt := time.Now().UTC().Truncate(time.Second)

	result, err := tx.ExecContext(ctx,
		"INSERT INTO uploads(filename, size, uploaded_at) VALUES(?, ?, ?)",
		filename, size, uploadedAt.Unix())
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}

	uploadID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	categoryIDs := map[string]int64{}
	var inserted int64

	for i, row := range rows {
		categoryID, ok := categoryIDs[row.Category]
		if !ok {
			categoryID, err = getOrCreateCategory(ctx, tx, row.Category)
			if err != nil {
				_ = tx.Rollback()
				return nil, fmt.Errorf("row %d: failed to resolve category %q: %w", i+1, row.Category, err)
			}
			categoryIDs[row.Category] = categoryID
		}

		transaction := storage.NewTransaction(0, row.Vendor, row.Amount, row.Date, categoryID, row.Category, &uploadID)
		if _, err = insertTransaction(ctx, tx, transaction); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("row %d: failed to insert transaction: %w", i+1, err)
		}

		inserted++
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return storage.NewUpload(uploadID, filename, size, uploadedAt, inserted), nil
}

func getOrCreateCategory(ctx context.Context, q queryer, name string) (int64, error) {
	category, err := categoryByName(ctx, q, name)
	if err == nil {
		return category.ID(), nil
	}

	if !errors.Is(err, &storage.NotFoundError{}) {
		return 0, err
	}

	category, err = createCategory(ctx, q, name)
	if err != nil {
		return 0, err
	}

	return category.ID(), nil
}

func uploadFromRow(scan func(dest ...any) error) (storage.Upload, error) {
	var id, size, uploadedAt, count int64
	var filename string

	if err := scan(&id, &filename, &size, &uploadedAt, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &storage.NotFoundError{}
		}
		return nil, err
	}

	return storage.NewUpload(id, filename, size, time.Unix(uploadedAt, 0).UTC(), count), nil
}
