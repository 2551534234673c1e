package export

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	internalExport "github.com/GustavoCaso/spendtrace/internal/export"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

type exportCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return exportCommand{out: os.Stdout}
}

func (c exportCommand) Description() string {
	return "Exports transactions as a CSV file that can be imported again"
}

var uploadID int64
var outputLocation string

func (c exportCommand) SetFlags(fs *flag.FlagSet) {
	fs.Int64Var(&uploadID, "u", 0, "only export the transactions of this upload")
	fs.StringVar(&outputLocation, "o", "", "file to write the CSV to; stdout when omitted")
}

func (c exportCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, logger *logger.Logger) error {
	var transactions []storage.Transaction
	var err error

	if uploadID > 0 {
		transactions, err = stor.GetTransactionsByUpload(ctx, uploadID)
	} else {
		transactions, err = stor.GetTransactions(ctx)
	}
	if err != nil {
		return fmt.Errorf("unable to fetch transactions: %w", err)
	}

	output := c.out
	if outputLocation != "" {
		f, createErr := os.Create(outputLocation)
		if createErr != nil {
			return fmt.Errorf("unable to create export file: %w", createErr)
		}
		defer f.Close()

		output = f
	}

	if err = internalExport.CSV(output, transactions); err != nil {
		return err
	}

	logger.Info("Transactions exported", "count", len(transactions), "output", outputLocation)

	return nil
}
