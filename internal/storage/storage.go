package storage

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/logger"
)

type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ConflictError is returned when a write violates a uniqueness constraint.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// MaxCategoryNameLength bounds category names, counted in characters.
const MaxCategoryNameLength = 125

// ValidationError is returned when a write carries a value that cannot be
// stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCategoryName rejects names longer than MaxCategoryNameLength.
func ValidateCategoryName(name string) error {
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("ensure this field has no more than %d characters", MaxCategoryNameLength),
		}
	}
	return nil
}

type Category interface {
	ID() int64
	Name() string
	Slug() string
}

type category struct {
	id   int64
	name string
	slug string
}

func (c category) ID() int64 {
	return c.id
}

func (c category) Name() string {
	return c.name
}

func (c category) Slug() string {
	return c.slug
}

func NewCategory(id int64, name, slug string) Category {
	return category{
		id:   id,
		name: name,
		slug: slug,
	}
}

type Transaction interface {
	ID() int64
	Vendor() string
	Amount() decimal.Decimal
	Date() time.Time
	CategoryID() int64
	CategoryName() string
	UploadID() *int64
}

type transaction struct {
	id           int64
	vendor       string
	amount       decimal.Decimal
	date         time.Time
	categoryID   int64
	categoryName string
	uploadID     *int64
}

// NewTransaction builds a Transaction. categoryName is only populated on reads
// and is ignored by writes.
func NewTransaction(
	id int64,
	vendor string,
	amount decimal.Decimal,
	date time.Time,
	categoryID int64,
	categoryName string,
	uploadID *int64,
) Transaction {
	return &transaction{
		id:           id,
		vendor:       vendor,
		amount:       amount,
		date:         date,
		categoryID:   categoryID,
		categoryName: categoryName,
		uploadID:     uploadID,
	}
}

func (t *transaction) ID() int64 {
	return t.id
}

func (t *transaction) Vendor() string {
	return t.vendor
}

func (t *transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t *transaction) Date() time.Time {
	return t.date
}

func (t *transaction) CategoryID() int64 {
	return t.categoryID
}

func (t *transaction) CategoryName() string {
	return t.categoryName
}

func (t *transaction) UploadID() *int64 {
	return t.uploadID
}

type Upload interface {
	ID() int64
	Filename() string
	Size() int64
	UploadedAt() time.Time
	TransactionCount() int64
}

type upload struct {
	id               int64
	filename         string
	size             int64
	uploadedAt       time.Time
	transactionCount int64
}

func NewUpload(id int64, filename string, size int64, uploadedAt time.Time, transactionCount int64) Upload {
	return upload{
		id:               id,
		filename:         filename,
		size:             size,
		uploadedAt:       uploadedAt,
		transactionCount: transactionCount,
	}
}

func (u upload) ID() int64 {
	return u.id
}

func (u upload) Filename() string {
	return u.filename
}

func (u upload) Size() int64 {
	return u.size
}

func (u upload) UploadedAt() time.Time {
	return u.uploadedAt
}

func (u upload) TransactionCount() int64 {
	return u.transactionCount
}

// ImportRow is one normalized CSV row ready to be materialized. Category is
// the already case-folded category name.
type ImportRow struct {
	Vendor   string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
}

type Storage interface {
	// Migrations
	ApplyMigrations(ctx context.Context, logger *logger.Logger) error
	DropTables() error

	// Categories
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) (int64, error)

	// Transactions
	GetTransactions(ctx context.Context) ([]Transaction, error)
	GetTransaction(ctx context.Context, id int64) (Transaction, error)
	GetTransactionsByCategory(ctx context.Context, categoryID int64) ([]Transaction, error)
	GetTransactionsByUpload(ctx context.Context, uploadID int64) ([]Transaction, error)
	CreateTransaction(ctx context.Context, transaction Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, transaction Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, id int64) (int64, error)

	// Uploads
	GetUploads(ctx context.Context) ([]Upload, error)
	GetUpload(ctx context.Context, id int64) (Upload, error)
	DeleteUpload(ctx context.Context, id int64) (int64, error)
	ImportUpload(ctx context.Context, filename string, size int64, rows []ImportRow) (Upload, error)

	// Resource managment
	Close() error
}
