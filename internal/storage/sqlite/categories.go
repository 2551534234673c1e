package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GustavoCaso/spendtrace/internal/slug"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

const categoryColumns = "id, name, slug"

func (s *sqliteStorage) GetCategories(ctx context.Context) ([]storage.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
	if err != nil {
		return []storage.Category{}, err
	}
	defer rows.Close()

	categories := []storage.Category{}

	for rows.Next() {
		category, categoryErr := categoryFromRow(rows.Scan)

		if categoryErr != nil {
			return categories, categoryErr
		}

		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (s *sqliteStorage) GetCategory(ctx context.Context, id int64) (storage.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	return categoryFromRow(row.Scan)
}

func (s *sqliteStorage) GetCategoryBySlug(ctx context.Context, categorySlug string) (storage.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE slug = ?", categorySlug)
	return categoryFromRow(row.Scan)
}

func (s *sqliteStorage) GetCategoryByName(ctx context.Context, name string) (storage.Category, error) {
	return categoryByName(ctx, s.db, name)
}

func (s *sqliteStorage) SlugExists(ctx context.Context, categorySlug string) (bool, error) {
	return slugExists(ctx, s.db, categorySlug)
}

// CreateCategory inserts a category under a freshly assigned slug. The slug is
// never recomputed afterwards, even if the category is renamed.
func (s *sqliteStorage) CreateCategory(ctx context.Context, name string) (storage.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	category, err := createCategory(ctx, tx, name)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return category, nil
}

func (s *sqliteStorage) UpdateCategory(ctx context.Context, id int64, name string) error {
	if err := storage.ValidateCategoryName(name); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?;", name, id)
	if err != nil {
		return uniqueViolation(err, name)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return &storage.NotFoundError{}
	}

	return nil
}

// DeleteCategory removes the category together with all of its transactions.
func (s *sqliteStorage) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE category_id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to delete category transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result.RowsAffected()
}

func categoryByName(ctx context.Context, q queryer, name string) (storage.Category, error) {
	row := q.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE name = ?", name)
	return categoryFromRow(row.Scan)
}

func slugExists(ctx context.Context, q queryer, categorySlug string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ?)", categorySlug).Scan(&exists)
	return exists, err
}

func createCategory(ctx context.Context, q queryer, name string) (storage.Category, error) {
	if err := storage.ValidateCategoryName(name); err != nil {
		return nil, err
	}

	categorySlug, err := slug.Assign(ctx, name, func(ctx context.Context, candidate string) (bool, error) {
		return slugExists(ctx, q, candidate)
	})
	if err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx, "INSERT INTO categories(name, slug) VALUES(?, ?)", name, categorySlug)
	if err != nil {
		return nil, uniqueViolation(err, name)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return storage.NewCategory(id, name, categorySlug), nil
}

func categoryFromRow(scan func(dest ...any) error) (storage.Category, error) {
	var id int64
	var name, categorySlug string

	if err := scan(&id, &name, &categorySlug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &storage.NotFoundError{}
		}
		return nil, err
	}

	return storage.NewCategory(id, name, categorySlug), nil
}
