package summary

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"text/template"
	"time"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	internalSummary "github.com/GustavoCaso/spendtrace/internal/summary"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

// content holds our static content.
//
//go:embed templates/*
var content embed.FS

type summaryCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return summaryCommand{out: os.Stdout}
}

func (c summaryCommand) Description() string {
	return "Displays the spending summary of an upload or of every transaction"
}

var uploadID int64
var verbose bool

func (c summaryCommand) SetFlags(fs *flag.FlagSet) {
	fs.Int64Var(&uploadID, "u", 0, "upload to summarize; all transactions when omitted")
	fs.BoolVar(&verbose, "v", false, "show spending for every vendor")
}

type summaryView struct {
	Title   string
	Summary internalSummary.Summary
	Verbose bool
}

func (c summaryCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, _ *logger.Logger) error {
	var transactions []storage.Transaction
	title := "All transactions"

	if uploadID > 0 {
		upload, err := stor.GetUpload(ctx, uploadID)
		if err != nil {
			return fmt.Errorf("unable to fetch upload %d: %w", uploadID, err)
		}

		transactions, err = stor.GetTransactionsByUpload(ctx, upload.ID())
		if err != nil {
			return fmt.Errorf("unable to fetch transactions: %w", err)
		}

		title = fmt.Sprintf("Upload %d: %s", upload.ID(), upload.Filename())
	} else {
		var err error
		transactions, err = stor.GetTransactions(ctx)
		if err != nil {
			return fmt.Errorf("unable to fetch transactions: %w", err)
		}
	}

	return renderTemplate(c.out, "summary.tmpl", summaryView{
		Title:   title,
		Summary: internalSummary.Summarize(internalSummary.FromTransactions(transactions)),
		Verbose: verbose,
	})
}

var templateFuncs = template.FuncMap{
	"formatMoney": util.FormatMoney,
	"colorOutput": util.ColorOutput,
	"formatDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return util.FormatDate(*t)
	},
}

func renderTemplate(out io.Writer, templateName string, value any) error {
	tmpl, err := content.ReadFile(path.Join("templates", templateName))
	if err != nil {
		return err
	}

	t, err := template.New(templateName).Funcs(templateFuncs).Parse(string(tmpl))
	if err != nil {
		return err
	}

	return t.Execute(out, value)
}
