package search

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

// content holds our static content.
//
//go:embed templates/*
var content embed.FS

type report struct {
	Categories []*category
	Verbose    bool
}

type category struct {
	Name         string
	Amount       decimal.Decimal
	Transactions []storage.Transaction
}

type searchCommand struct {
	out io.Writer
}

func NewCommand() cli.Command {
	return searchCommand{out: os.Stdout}
}

func (c searchCommand) Description() string {
	return "Search transactions by vendor"
}

var keyword string
var verbose bool

func (c searchCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&keyword, "k", "", "keyword to use for the search")
	fs.BoolVar(&verbose, "v", false, "show verbose report output")
}

func (c searchCommand) Run(ctx context.Context, stor storage.Storage, _ *config.Config, _ *logger.Logger) error {
	if keyword == "" {
		return fmt.Errorf("you must provide a keyword to use for the search")
	}

	transactions, err := stor.GetTransactions(ctx)
	if err != nil {
		return fmt.Errorf("unable to search the transactions: %w", err)
	}

	r := report{
		Categories: group(match(transactions, keyword)),
		Verbose:    verbose,
	}

	if len(r.Categories) == 0 {
		fmt.Fprintf(c.out, "No transactions match %q\n", keyword)
		return nil
	}

	if err = renderTemplate(c.out, "search.tmpl", r); err != nil {
		return fmt.Errorf("unable to render report: %w", err)
	}

	return nil
}

// match returns the transactions whose vendor contains keyword, ignoring case,
// sorted by date.
func match(transactions []storage.Transaction, keyword string) []storage.Transaction {
	keyword = strings.ToLower(keyword)

	matches := []storage.Transaction{}
	for _, transaction := range transactions {
		if strings.Contains(strings.ToLower(transaction.Vendor()), keyword) {
			matches = append(matches, transaction)
		}
	}

	slices.SortStableFunc(matches, func(a, b storage.Transaction) int {
		return a.Date().Compare(b.Date())
	})

	return matches
}

// group totals transactions per category, keeping the order in which each
// category first appears.
func group(transactions []storage.Transaction) []*category {
	categories := []*category{}
	byName := map[string]*category{}

	for _, transaction := range transactions {
		c, ok := byName[transaction.CategoryName()]
		if !ok {
			c = &category{Name: transaction.CategoryName()}
			byName[c.Name] = c
			categories = append(categories, c)
		}

		c.Amount = c.Amount.Add(transaction.Amount())
		c.Transactions = append(c.Transactions, transaction)
	}

	return categories
}

var templateFuncs = template.FuncMap{
	"formatMoney": util.FormatMoney,
	"colorOutput": util.ColorOutput,
	"formatDate":  util.FormatDate,
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
