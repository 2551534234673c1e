package delete

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

type deleteCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return deleteCommand{out: os.Stdout}
}

func (c deleteCommand) Description() string {
	return "Deletes an upload or a category together with their transactions, or resets the whole database"
}

var uploadID int64
var categorySlug string
var reset bool

func (c deleteCommand) SetFlags(fs *flag.FlagSet) {
	fs.Int64Var(&uploadID, "u", 0, "upload to delete")
	fs.StringVar(&categorySlug, "s", "", "slug of the category to delete")
	fs.BoolVar(&reset, "reset", false, "drop every table and recreate an empty schema")
}

func (c deleteCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, logger *logger.Logger) error {
	switch {
	case reset && (uploadID > 0 || categorySlug != ""):
		return errors.New("-reset cannot be combined with -u or -s")
	case reset:
		if err := stor.DropTables(); err != nil {
			return fmt.Errorf("unable to drop tables: %w", err)
		}

		if err := stor.ApplyMigrations(ctx, logger); err != nil {
			return fmt.Errorf("unable to recreate schema: %w", err)
		}

		logger.Info("Database reset")
		fmt.Fprintln(c.out, "Deleted every upload, category and transaction")
	case uploadID > 0 && categorySlug != "":
		return errors.New("use either -u or -s, not both")
	case uploadID > 0:
		upload, err := stor.GetUpload(ctx, uploadID)
		if err != nil {
			return fmt.Errorf("unable to find upload %d: %w", uploadID, err)
		}

		if _, err = stor.DeleteUpload(ctx, upload.ID()); err != nil {
			return fmt.Errorf("unable to delete upload: %w", err)
		}

		logger.Info("Upload deleted", "upload_id", upload.ID(), "name", upload.Filename())
		fmt.Fprintf(c.out, "Deleted upload %s and its %d transactions\n", upload.Filename(), upload.TransactionCount())
	case categorySlug != "":
		category, err := stor.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			return fmt.Errorf("unable to find category %s: %w", categorySlug, err)
		}

		if _, err = stor.DeleteCategory(ctx, category.ID()); err != nil {
			return fmt.Errorf("unable to delete category: %w", err)
		}

		logger.Info("Category deleted", "slug", category.Slug())
		fmt.Fprintf(c.out, "Deleted category %s and all its transactions\n", category.Name())
	default:
		return errors.New("you must provide an upload (-u), a category slug (-s) or -reset")
	}

	return nil
}
