package category

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

var actionFlag string
var nameFlag string
var slugFlag string
var outputLocation string

type categoryCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return categoryCommand{out: os.Stdout}
}

func (c categoryCommand) Description() string {
	return "Allows to interact with the transaction categories."
}

func (c categoryCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&actionFlag, "a", "list", "What action to perform. Supported values are: list, create, rename")
	fs.StringVar(&nameFlag, "n", "", "Category name used by create and rename")
	fs.StringVar(&slugFlag, "s", "", "Slug of the category to rename")
	fs.StringVar(&outputLocation, "o", "", "Where to print the list output result")
}

func (c categoryCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, logger *logger.Logger) error {
	switch actionFlag {
	case "list":
		output := c.out
		if outputLocation != "" {
			f, err := os.Create(outputLocation)
			if err != nil {
				return fmt.Errorf("unable to create list file output: %w", err)
			}
			defer f.Close()

			output = f
		}
		return list(ctx, output, stor)
	case "create":
		name := strings.TrimSpace(nameFlag)
		if name == "" {
			return errors.New("you must provide a category name")
		}

		category, err := stor.CreateCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("unable to create category: %w", err)
		}

		logger.Info("Category created", "name", category.Name(), "slug", category.Slug())
		fmt.Fprintf(c.out, "Created category %s with slug %s\n", category.Name(), category.Slug())
	case "rename":
		name := strings.TrimSpace(nameFlag)
		if slugFlag == "" || name == "" {
			return errors.New("you must provide the category slug and the new name")
		}

		category, err := stor.GetCategoryBySlug(ctx, slugFlag)
		if err != nil {
			return fmt.Errorf("unable to find category %s: %w", slugFlag, err)
		}

		if err = stor.UpdateCategory(ctx, category.ID(), name); err != nil {
			return fmt.Errorf("unable to rename category: %w", err)
		}

		fmt.Fprintf(c.out, "Renamed category %s to %s\n", category.Slug(), name)
	default:
		return fmt.Errorf("unsupported action: %s", actionFlag)
	}

	return nil
}

func list(ctx context.Context, w io.Writer, stor storage.Storage) error {
	categories, err := stor.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("unable to get categories: %w", err)
	}

	for _, category := range categories {
		transactions, err := stor.GetTransactionsByCategory(ctx, category.ID())
		if err != nil {
			return fmt.Errorf("unable to get transactions for %s: %w", category.Slug(), err)
		}

		fmt.Fprintf(w, "%s %s %s\n",
			util.ColorOutput(category.Name(), "bold"),
			util.ColorOutput("("+category.Slug()+")", "faint"),
			util.ColorOutput(fmt.Sprintf("%d transactions", len(transactions)), "cyan"),
		)
	}

	return nil
}
