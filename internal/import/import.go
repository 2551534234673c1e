package importutil

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/summary"
)

var (
	ErrInvalidFile = errors.New("invalid file")
	ErrNoValidRows = errors.New("file does not contain any valid rows")
)

// ImportInfo reports the outcome of an import.
type ImportInfo struct {
	Upload       storage.Upload
	TotalImports int
	Rejected     []RowError
	Summary      summary.Summary
}

// Import parses the file, normalizes its rows and stores the valid ones as a
// new upload. Rejected rows are reported in ImportInfo. When no row survives
// normalization nothing is stored and ErrNoValidRows is returned alongside the
// rejected rows.
func Import(
	ctx context.Context,
	filename string,
	reader io.Reader,
	size int64,
	stor storage.Storage,
	logger *logger.Logger,
) (ImportInfo, error) {
	info := ImportInfo{}

	parsed, err := ParseFile(filename, reader)
	if err != nil {
		return info, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	result, err := Normalize(parsed)
	if err != nil {
		return info, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	logger.Debug("Parsed upload", "file", filename, "format", parsed.Format, "rows", parsed.GetTotalRows())

	info.Rejected = result.Errors
	for _, rowErr := range result.Errors {
		logger.Debug("Rejected row", "file", filename, "row", rowErr.Row, "field", rowErr.Field, "error", rowErr.Message)
	}

	if len(result.Rows) == 0 {
		return info, ErrNoValidRows
	}

	upload, err := stor.ImportUpload(ctx, filename, size, result.Rows)
	if err != nil {
		return info, fmt.Errorf("failed to store upload: %w", err)
	}

	info.Upload = upload
	info.TotalImports = int(upload.TransactionCount())
	info.Summary = summary.Summarize(Records(result.Rows))

	logger.Info("Import completed",
		"file", filename,
		"upload_id", upload.ID(),
		"imported", info.TotalImports,
		"rejected", len(info.Rejected),
	)

	return info, nil
}

// Records converts import rows into aggregation records.
func Records(rows []storage.ImportRow) []summary.Record {
	records := make([]summary.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, summary.Record{
			Vendor:   row.Vendor,
			Amount:   row.Amount,
			Date:     row.Date,
			Category: row.Category,
		})
	}
	return records
}
