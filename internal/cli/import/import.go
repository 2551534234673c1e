package importcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	importUtil "github.com/GustavoCaso/spendtrace/internal/import"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

type importCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return importCommand{out: os.Stdout}
}

func (c importCommand) Description() string {
	return "Imports transactions from a CSV file"
}

var importFile string

func (c importCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&importFile, "f", "", "file to import")
}

func (c importCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, logger *logger.Logger) error {
	if importFile == "" {
		return errors.New("you must provide a file to import")
	}

	file, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	info, err := importUtil.Import(ctx, filepath.Base(importFile), file, stat.Size(), stor, logger)
	if len(info.Rejected) > 0 {
		fmt.Fprintf(c.out, "Rejected rows: %d\n", len(info.Rejected))
		for _, rowErr := range info.Rejected {
			fmt.Fprintf(c.out, "  %s\n", util.ColorOutput(rowErr.Error(), "yellow"))
		}
	}
	if err != nil {
		return fmt.Errorf("unable to import transactions due to error: %w", err)
	}

	fmt.Fprintf(c.out, "Total transactions imported: %d (upload %d)\n", info.TotalImports, info.Upload.ID())
	fmt.Fprintf(c.out, "Total spent: %s\n", util.FormatMoney(info.Summary.TotalSpent, ",", "."))
	for _, entry := range info.Summary.SpendingPerCategory {
		fmt.Fprintf(c.out, "  %s: %s\n", entry.Name, util.FormatMoney(entry.Amount, ",", "."))
	}

	return nil
}
